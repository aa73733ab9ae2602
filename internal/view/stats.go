package view

import "github.com/five82/patrol/internal/violations"

// Stats are the summary counts shown in the header.
type Stats struct {
	Total    int `json:"total"`
	New      int `json:"newCount"`
	NoPlate  int `json:"noPlateCount"`
	Detected int `json:"detectedCount"`
}

// Summarize counts over the full snapshot. NoPlate+Detected can be less than
// Total: a record with a null plate counts toward neither.
func Summarize(records []violations.Violation) Stats {
	stats := Stats{Total: len(records)}
	for _, v := range records {
		if v.Status == violations.StatusNew {
			stats.New++
		}
		switch {
		case v.HasNoPlate():
			stats.NoPlate++
		case v.HasDetectedPlate():
			stats.Detected++
		}
	}
	return stats
}

// DerivedView is everything the list screen renders for one snapshot.
type DerivedView struct {
	Filtered []violations.Violation
	Stats    Stats
}

// Derive filters records and summarizes the unfiltered set.
func Derive(records []violations.Violation, criteria Criteria) DerivedView {
	return DerivedView{
		Filtered: Apply(records, criteria),
		Stats:    Summarize(records),
	}
}
