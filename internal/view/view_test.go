package view

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/patrol/internal/violations"
)

func scenarioSnapshot() []violations.Violation {
	return []violations.Violation{
		{
			ID:         "1",
			CameraID:   "cam-north",
			Status:     violations.StatusNew,
			PlateText:  violations.StringPtr("ABC123"),
			Confidence: violations.FloatPtr(0.92),
		},
		{
			ID:        "2",
			CameraID:  "cam-south",
			Status:    violations.StatusResolved,
			PlateText: violations.StringPtr(violations.PlateNotDetected),
		},
	}
}

func ids(records []violations.Violation) []violations.ID {
	out := make([]violations.ID, 0, len(records))
	for _, v := range records {
		out = append(out, v.ID)
	}
	return out
}

func TestDerive_SearchIsCaseInsensitive(t *testing.T) {
	got := Derive(scenarioSnapshot(), Criteria{Search: "abc", Status: StatusAll, Camera: CameraAll})

	if diff := cmp.Diff([]violations.ID{"1"}, ids(got.Filtered)); diff != "" {
		t.Fatalf("filtered ids mismatch (-want +got):\n%s", diff)
	}
	want := Stats{Total: 2, New: 1, NoPlate: 1, Detected: 1}
	if diff := cmp.Diff(want, got.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestDerive_StatusFilter(t *testing.T) {
	got := Derive(scenarioSnapshot(), Criteria{Search: "", Status: StatusFilter(violations.StatusResolved), Camera: CameraAll})

	if diff := cmp.Diff([]violations.ID{"2"}, ids(got.Filtered)); diff != "" {
		t.Fatalf("filtered ids mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_SearchMatchesCameraAndSkipsNullPlate(t *testing.T) {
	records := []violations.Violation{
		{ID: "a", CameraID: "Gate-East", PlateText: nil},
		{ID: "b", CameraID: "lot-2", PlateText: violations.StringPtr("east99")},
		{ID: "c", CameraID: "lot-3", PlateText: nil},
	}

	got := Apply(records, Criteria{Search: "EAST"})
	if diff := cmp.Diff([]violations.ID{"a", "b"}, ids(got)); diff != "" {
		t.Fatalf("filtered ids mismatch (-want +got):\n%s", diff)
	}

	got = Apply(records, Criteria{Search: "lot", Camera: "lot-3"})
	if diff := cmp.Diff([]violations.ID{"c"}, ids(got)); diff != "" {
		t.Fatalf("filtered ids mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_SearchIsLiteral(t *testing.T) {
	records := []violations.Violation{
		{ID: "1", CameraID: "gate", PlateText: violations.StringPtr("AB 123")},
		{ID: "2", CameraID: "gate", PlateText: violations.StringPtr("XAB")},
		{ID: "3", CameraID: "lot 2", PlateText: violations.StringPtr("ZZZ")},
	}

	got := Apply(records, Criteria{Search: "ab "})
	if diff := cmp.Diff([]violations.ID{"1"}, ids(got)); diff != "" {
		t.Fatalf("trailing space search mismatch (-want +got):\n%s", diff)
	}

	got = Apply(records, Criteria{Search: " "})
	if diff := cmp.Diff([]violations.ID{"1", "3"}, ids(got)); diff != "" {
		t.Fatalf("space search mismatch (-want +got):\n%s", diff)
	}

	if (Criteria{Search: " "}).IsDefault() {
		t.Fatalf("IsDefault() = true for a whitespace search, want false")
	}
}

func TestApply_EmptyCriteriaAndEmptySnapshot(t *testing.T) {
	records := scenarioSnapshot()
	if diff := cmp.Diff(records, Apply(records, DefaultCriteria())); diff != "" {
		t.Fatalf("default criteria should keep everything (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(records, Apply(records, Criteria{})); diff != "" {
		t.Fatalf("zero criteria should keep everything (-want +got):\n%s", diff)
	}
	if got := Apply(nil, Criteria{Search: "x"}); len(got) != 0 {
		t.Fatalf("Apply(nil) = %#v, want empty", got)
	}
	if got := Summarize(nil); got != (Stats{}) {
		t.Fatalf("Summarize(nil) = %#v, want zero", got)
	}
}

func TestSummarize_NullPlateCountsTowardNeither(t *testing.T) {
	records := []violations.Violation{
		{ID: "1", Status: violations.StatusNew, PlateText: nil},
		{ID: "2", Status: violations.StatusReviewed, PlateText: violations.StringPtr(violations.PlateUnreadable)},
		{ID: "3", Status: violations.StatusNew, PlateText: violations.StringPtr("XYZ")},
	}
	got := Summarize(records)
	want := Stats{Total: 3, New: 2, NoPlate: 1, Detected: 1}
	if got != want {
		t.Fatalf("Summarize = %#v, want %#v", got, want)
	}
	if got.NoPlate+got.Detected == got.Total {
		t.Fatalf("null plate should leave NoPlate+Detected below Total")
	}
}

func randomSnapshot(r *rand.Rand, n int) []violations.Violation {
	cameras := []string{"cam-a", "cam-b", "Cam-C", ""}
	plates := []*string{
		nil,
		violations.StringPtr(violations.PlateNotDetected),
		violations.StringPtr(violations.PlateUnreadable),
		violations.StringPtr("ABC123"),
		violations.StringPtr("xyz-789"),
		violations.StringPtr("CAM4411"),
	}
	statuses := violations.Statuses()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	out := make([]violations.Violation, n)
	for i := range out {
		out[i] = violations.Violation{
			ID:        violations.ID(fmt.Sprintf("%d", i)),
			CameraID:  cameras[r.IntN(len(cameras))],
			PlateText: plates[r.IntN(len(plates))],
			Status:    statuses[r.IntN(len(statuses))],
			Timestamp: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

func randomCriteria(r *rand.Rand) Criteria {
	searches := []string{"", "abc", "CAM", "-", "zzz", "7", " ", "AB "}
	cams := []string{CameraAll, "", "cam-a", "Cam-C", "missing"}
	statuses := append(StatusFilters(), "")
	return Criteria{
		Search: searches[r.IntN(len(searches))],
		Status: statuses[r.IntN(len(statuses))],
		Camera: cams[r.IntN(len(cams))],
	}
}

// satisfies re-states the three predicates independently of Apply.
func satisfies(v violations.Violation, c Criteria) bool {
	if s := strings.ToLower(c.Search); s != "" {
		plate := v.PlateText != nil && strings.Contains(strings.ToLower(*v.PlateText), s)
		camera := strings.Contains(strings.ToLower(v.CameraID), s)
		if !plate && !camera {
			return false
		}
	}
	if c.Status != "" && c.Status != StatusAll && string(v.Status) != string(c.Status) {
		return false
	}
	if c.Camera != "" && c.Camera != CameraAll && v.CameraID != c.Camera {
		return false
	}
	return true
}

func TestApply_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for iter := 0; iter < 300; iter++ {
		snapshot := randomSnapshot(r, r.IntN(40))
		criteria := randomCriteria(r)
		before := violations.CloneAll(snapshot)

		got := Apply(snapshot, criteria)

		// Idempotent and side-effect free.
		if diff := cmp.Diff(got, Apply(snapshot, criteria)); diff != "" {
			t.Fatalf("Apply not idempotent for %+v (-first +second):\n%s", criteria, diff)
		}
		if diff := cmp.Diff(before, snapshot); diff != "" {
			t.Fatalf("Apply modified its input (-before +after):\n%s", diff)
		}

		// Sound and complete, in original relative order.
		var want []violations.Violation
		for _, v := range snapshot {
			if satisfies(v, criteria) {
				want = append(want, v)
			}
		}
		if diff := cmp.Diff(ids(want), ids(got)); diff != "" {
			t.Fatalf("Apply(%+v) mismatch (-want +got):\n%s", criteria, diff)
		}
		for _, v := range got {
			if !Matches(v, criteria) {
				t.Fatalf("Matches(%s, %+v) = false for a returned record", v.ID, criteria)
			}
		}

		// Stats never depend on criteria.
		if diff := cmp.Diff(Summarize(snapshot), Derive(snapshot, criteria).Stats); diff != "" {
			t.Fatalf("stats changed under criteria %+v (-full +derived):\n%s", criteria, diff)
		}
	}
}

func TestCameras(t *testing.T) {
	records := []violations.Violation{
		{CameraID: "lot-2"}, {CameraID: "gate"}, {CameraID: "lot-2"}, {CameraID: ""},
	}
	if diff := cmp.Diff([]string{"gate", "lot-2"}, Cameras(records)); diff != "" {
		t.Fatalf("Cameras mismatch (-want +got):\n%s", diff)
	}
}

func TestNextCamera(t *testing.T) {
	cams := []string{"a", "b"}
	steps := []struct{ in, want string }{
		{CameraAll, "a"},
		{"a", "b"},
		{"b", CameraAll},
		{"gone", CameraAll},
		{"", "a"},
	}
	for _, s := range steps {
		if got := NextCamera(s.in, cams); got != s.want {
			t.Fatalf("NextCamera(%q) = %q, want %q", s.in, got, s.want)
		}
	}
	if got := NextCamera("a", nil); got != CameraAll {
		t.Fatalf("NextCamera with no cameras = %q, want all", got)
	}
}

func TestStatusFilterCycleAndParse(t *testing.T) {
	seq := []StatusFilter{StatusAll}
	for i := 0; i < 4; i++ {
		seq = append(seq, NextStatus(seq[len(seq)-1]))
	}
	want := []StatusFilter{StatusAll, "new", "reviewed", "resolved", StatusAll}
	if diff := cmp.Diff(want, seq); diff != "" {
		t.Fatalf("status cycle mismatch (-want +got):\n%s", diff)
	}

	if got, err := ParseStatusFilter(" "); err != nil || got != StatusAll {
		t.Fatalf("ParseStatusFilter(blank) = %q, %v, want all", got, err)
	}
	if got, err := ParseStatusFilter("Reviewed"); err != nil || got != "reviewed" {
		t.Fatalf("ParseStatusFilter(Reviewed) = %q, %v, want reviewed", got, err)
	}
	if _, err := ParseStatusFilter("bogus"); err == nil {
		t.Fatalf("ParseStatusFilter(bogus) returned nil error")
	}
}
