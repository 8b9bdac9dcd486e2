package alarm

import (
	"errors"
	"fmt"
	"sort"
)

// Field names used for the flat string representation of a Record.
const (
	FieldSeverity           = "severity"
	FieldElement            = "element"
	FieldTimestamp          = "timestamp"
	FieldDescription        = "description"
	FieldMeaning            = "meaning"
	FieldRecommendedActions = "recommendedActions"
)

// Record describes a single alarm raised by a network element.
type Record struct {
	// ID is the alarm number the user asked about.
	ID string `json:"alarmId"`
	// Severity is the alarm class, e.g. "Critical" or "Minor".
	Severity string `json:"severity"`
	// Element is the reporting network element.
	Element string `json:"element"`
	// Timestamp is when the element raised the alarm, already formatted for display.
	Timestamp string `json:"timestamp"`
	// Description is the short alarm text.
	Description string `json:"description"`
	// Meaning explains what the alarm indicates.
	Meaning string `json:"meaning"`
	// RecommendedActions lists what the operator should do.
	RecommendedActions string `json:"recommendedActions"`
}

// errMissingField is returned by FromFields when a required key is absent.
var errMissingField = errors.New("alarm record field is missing")

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	cloned := *r

	return &cloned
}

// Summary renders the two-line confirmation shown after a successful lookup.
func (r *Record) Summary() string {
	return fmt.Sprintf("Alarm %s found: severity %s.\nReported by element %s.", r.ID, r.Severity, r.Element)
}

// Fields flattens the record into string key-value pairs.
func (r *Record) Fields() map[string]string {
	return map[string]string{
		"alarmId":               r.ID,
		FieldSeverity:           r.Severity,
		FieldElement:            r.Element,
		FieldTimestamp:          r.Timestamp,
		FieldDescription:        r.Description,
		FieldMeaning:            r.Meaning,
		FieldRecommendedActions: r.RecommendedActions,
	}
}

// FromFields rebuilds a Record from its flat representation.
// Every display field must be present; the alarm id is optional.
func FromFields(fields map[string]string) (*Record, error) {
	required := []string{
		FieldSeverity,
		FieldElement,
		FieldTimestamp,
		FieldDescription,
		FieldMeaning,
		FieldRecommendedActions,
	}

	var missing []string

	for _, key := range required {
		if _, ok := fields[key]; !ok {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return nil, fmt.Errorf("%w: %v", errMissingField, missing)
	}

	return &Record{
		ID:                 fields["alarmId"],
		Severity:           fields[FieldSeverity],
		Element:            fields[FieldElement],
		Timestamp:          fields[FieldTimestamp],
		Description:        fields[FieldDescription],
		Meaning:            fields[FieldMeaning],
		RecommendedActions: fields[FieldRecommendedActions],
	}, nil
}
