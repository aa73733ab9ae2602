package violations

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Plate sentinels reported by the recognizer when extraction fails.
const (
	PlateNotDetected = "no_plate_detected"
	PlateUnreadable  = "unreadable"
)

// PageSize is the fixed number of records requested per List call.
const PageSize = 100

// Status is the review state of a violation.
type Status string

const (
	StatusNew      Status = "new"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusNew, StatusReviewed, StatusResolved}
}

// ParseStatus validates a user-supplied status value.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	switch s {
	case StatusNew, StatusReviewed, StatusResolved:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q (want new, reviewed or resolved)", value)
}

// ID identifies a violation. The collection may encode it as a JSON number or
// string; both decode to the same canonical text.
type ID string

// UnmarshalJSON accepts numeric and string identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON always emits the id as a JSON string. Violation keeps track of
// ids that arrived as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// Violation mirrors one record of the remote collection. Only Status is ever
// changed by the client, and only through the remote Update operation.
type Violation struct {
	ID         ID        `json:"id"`
	CameraID   string    `json:"camera_id"`
	PlateText  *string   `json:"plate_text"`
	Confidence *float64  `json:"confidence"`
	SceneURL   *string   `json:"scene_url"`
	PlateURL   *string   `json:"plate_url"`
	Timestamp  time.Time `json:"timestamp"`
	Status     Status    `json:"status"`

	// NumericID records that the collection sent ID as a JSON number, so it
	// is written back as one.
	NumericID bool `json:"-"`
}

type wireViolation Violation

// UnmarshalJSON decodes a record and notes the JSON kind of its id.
func (v *Violation) UnmarshalJSON(data []byte) error {
	var aux struct {
		wireViolation
		RawID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*v = Violation(aux.wireViolation)
	v.ID, v.NumericID = "", false
	raw := bytes.TrimSpace(aux.RawID)
	if len(raw) == 0 {
		return nil
	}
	if err := v.ID.UnmarshalJSON(raw); err != nil {
		return err
	}
	v.NumericID = raw[0] != '"' && !bytes.Equal(raw, []byte("null"))
	return nil
}

// MarshalJSON writes the id back in the kind it arrived in.
func (v Violation) MarshalJSON() ([]byte, error) {
	var id any = string(v.ID)
	if v.NumericID {
		id = json.Number(v.ID)
	}
	return json.Marshal(struct {
		wireViolation
		ID any `json:"id"`
	}{wireViolation(v), id})
}

// HasNoPlate reports whether the recognizer returned one of the no-plate sentinels.
func (v Violation) HasNoPlate() bool {
	if v.PlateText == nil {
		return false
	}
	return isSentinel(*v.PlateText)
}

// HasDetectedPlate reports whether a real plate string is present. An empty
// string is treated like null.
func (v Violation) HasDetectedPlate() bool {
	return v.PlateText != nil && *v.PlateText != "" && !isSentinel(*v.PlateText)
}

// PlateLabel returns the plate for display. Sentinels and null collapse to the
// same label.
func (v Violation) PlateLabel() string {
	if !v.HasDetectedPlate() {
		return "Cannot extract"
	}
	return *v.PlateText
}

// ConfidenceLabel formats the recognizer confidence as a percentage. It is
// empty unless a plate was detected and the confidence is present and above zero.
func (v Violation) ConfidenceLabel() string {
	if !v.HasDetectedPlate() || v.Confidence == nil || *v.Confidence <= 0 {
		return ""
	}
	return fmt.Sprintf("%.0f%%", *v.Confidence*100)
}

func isSentinel(plate string) bool {
	return plate == PlateNotDetected || plate == PlateUnreadable
}

// CloneAll returns an independent copy of records. Pointer fields are shared
// since records are never mutated in place.
func CloneAll(records []Violation) []Violation {
	if len(records) == 0 {
		return nil
	}
	dup := make([]Violation, len(records))
	copy(dup, records)
	return dup
}

// StringPtr is a convenience for building optional fields.
func StringPtr(s string) *string { return &s }

// FloatPtr is a convenience for building optional fields.
func FloatPtr(f float64) *float64 { return &f }
