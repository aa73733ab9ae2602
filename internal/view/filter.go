package view

import (
	"slices"
	"strings"

	"github.com/five82/patrol/internal/violations"
)

// StatusFilter narrows the list by review status. StatusAll disables it.
type StatusFilter string

const StatusAll StatusFilter = "all"

// CameraAll disables the camera predicate.
const CameraAll = "all"

// Criteria is the operator's current filter selection. Search is matched
// literally, whitespace included; only the empty string disables it.
type Criteria struct {
	Search string
	Status StatusFilter
	Camera string
}

// DefaultCriteria matches every record.
func DefaultCriteria() Criteria {
	return Criteria{Status: StatusAll, Camera: CameraAll}
}

// IsDefault reports whether every predicate is disabled.
func (c Criteria) IsDefault() bool {
	return c.Search == "" && c.statusSkipped() && c.cameraSkipped()
}

func (c Criteria) statusSkipped() bool {
	return c.Status == "" || c.Status == StatusAll
}

func (c Criteria) cameraSkipped() bool {
	return c.Camera == "" || c.Camera == CameraAll
}

// Apply returns the records matching every enabled predicate in criteria, in
// their original order. The input is not modified.
func Apply(records []violations.Violation, criteria Criteria) []violations.Violation {
	needle := normalizeSearch(criteria.Search)
	out := make([]violations.Violation, 0, len(records))
	for _, v := range records {
		if criteria.matches(v, needle) {
			out = append(out, v)
		}
	}
	return out
}

// Matches reports whether a single record passes criteria.
func Matches(v violations.Violation, criteria Criteria) bool {
	return criteria.matches(v, normalizeSearch(criteria.Search))
}

func (c Criteria) matches(v violations.Violation, needle string) bool {
	if needle != "" && !matchesSearch(v, needle) {
		return false
	}
	if !c.statusSkipped() && string(v.Status) != string(c.Status) {
		return false
	}
	if !c.cameraSkipped() && v.CameraID != c.Camera {
		return false
	}
	return true
}

func normalizeSearch(search string) string {
	return strings.ToLower(search)
}

func matchesSearch(v violations.Violation, needle string) bool {
	if v.PlateText != nil && strings.Contains(strings.ToLower(*v.PlateText), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(v.CameraID), needle)
}

// Cameras returns the distinct camera ids present in records, sorted.
func Cameras(records []violations.Violation) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, v := range records {
		if v.CameraID == "" {
			continue
		}
		if _, ok := seen[v.CameraID]; ok {
			continue
		}
		seen[v.CameraID] = struct{}{}
		out = append(out, v.CameraID)
	}
	slices.Sort(out)
	return out
}

// NextStatus cycles all → new → reviewed → resolved → all.
func NextStatus(current StatusFilter) StatusFilter {
	order := StatusFilters()
	for i, s := range order {
		if s == current {
			return order[(i+1)%len(order)]
		}
	}
	return StatusAll
}

// StatusFilters lists the filter choices in cycle order.
func StatusFilters() []StatusFilter {
	out := []StatusFilter{StatusAll}
	for _, s := range violations.Statuses() {
		out = append(out, StatusFilter(s))
	}
	return out
}

// ParseStatusFilter accepts "all" or any record status.
func ParseStatusFilter(value string) (StatusFilter, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" || trimmed == string(StatusAll) {
		return StatusAll, nil
	}
	s, err := violations.ParseStatus(trimmed)
	if err != nil {
		return "", err
	}
	return StatusFilter(s), nil
}

// NextCamera cycles all → cameras[0] → ... → all. A camera that has dropped out
// of the snapshot restarts the cycle.
func NextCamera(current string, cameras []string) string {
	if len(cameras) == 0 {
		return CameraAll
	}
	if current == "" || current == CameraAll {
		return cameras[0]
	}
	idx := slices.Index(cameras, current)
	if idx < 0 || idx == len(cameras)-1 {
		return CameraAll
	}
	return cameras[idx+1]
}
