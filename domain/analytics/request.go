package analytics

import (
	"encoding/json"
	"fmt"

	"gosurvey/domain/survey"
)

// DimensionType selects how a segmentation dimension buckets sessions.
type DimensionType string

const (
	DimensionNumericRange  DimensionType = "numeric_range"
	DimensionChoiceMapping DimensionType = "choice_mapping"
)

// NumericRange is an inclusive [Min, Max] interval; a nil bound is unbounded
// on that side.
type NumericRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// UnmarshalJSON accepts both the wire shape, a two-element
// [min|null, max|null] pair, and the object form {"min": …, "max": …}.
func (r *NumericRange) UnmarshalJSON(data []byte) error {
	var pair []*float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("numeric range must have exactly 2 bounds, got %d", len(pair))
		}
		r.Min, r.Max = pair[0], pair[1]
		return nil
	}
	type plain NumericRange
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = NumericRange(obj)
	return nil
}

// MarshalJSON emits the wire pair shape.
func (r NumericRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([]*float64{r.Min, r.Max})
}

// Contains reports whether v satisfies both bounds.
func (r NumericRange) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Dimension is one independent segmentation rule. Exactly one of Ranges or
// Mapping is set, matching Type. Ranges may overlap: a session matching two
// ranges lands in both segments, which is accepted and documented rather
// than corrected.
type Dimension struct {
	Name       string                  `json:"name,omitempty"`
	QuestionID survey.QuestionID       `json:"question_id"`
	Type       DimensionType           `json:"type"`
	Ranges     map[string]NumericRange `json:"ranges,omitempty"`
	Mapping    map[string]string       `json:"mapping,omitempty"`
}

// SegmentationConfig is the caller-supplied segmentation request.
type SegmentationConfig struct {
	Dimensions []Dimension `json:"dimensions"`
}

// Filter narrows the session set before analytics run. A filter is either a
// choice filter (SelectedOptions set) or a numeric-range filter (Range set).
type Filter struct {
	QuestionID      survey.QuestionID `json:"question_id"`
	SelectedOptions []string          `json:"selected_options,omitempty"`
	Range           *NumericRange     `json:"numeric_range,omitempty"`
}

// FilterRequest is the caller-supplied filter specification. Filters combine
// with AND; ExcludeOpenText drops free-text questions from the result set
// entirely, not just from filtering.
type FilterRequest struct {
	Filters         []Filter `json:"filters"`
	ExcludeOpenText bool     `json:"exclude_open_text"`
}

// SegmentAssignment maps segment names to the sessions they contain.
// "All responses" always exists and holds every session passed in.
type SegmentAssignment map[string]map[survey.SessionID]struct{}

// AllResponsesSegment is the segment that always contains every session.
const AllResponsesSegment = "All responses"

// UnknownSegment collects sessions with no derivable value for a dimension.
const UnknownSegment = "Unknown"
