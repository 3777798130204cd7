package segment

import (
	"testing"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/errors"
)

func f(v float64) *float64 { return &v }

func makeSessions(answers map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer) survey.SessionSet {
	set := make(survey.SessionSet, len(answers))
	for id, qs := range answers {
		set[id] = survey.Session{ID: id, Questions: qs}
	}
	return set
}

var incomeQuestion = survey.Question{
	ID:            1,
	PrimaryType:   survey.PrimaryOpenText,
	SecondaryType: survey.SecondaryNumber,
}

var roleQuestion = survey.Question{
	ID:            2,
	PrimaryType:   survey.PrimaryForm,
	SecondaryType: survey.SecondaryMultipleChoices,
	Options:       []any{"Engineer", "Designer", "Manager"},
}

// TestApply_OverlappingRanges verifies a session whose value satisfies two
// overlapping ranges lands in both segments. Overlap is accepted, never
// deduplicated.
func TestApply_OverlappingRanges(t *testing.T) {
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {1: "7"},
		"s2": {1: "12"},
		"s3": {1: ""},
	})
	config := domain.SegmentationConfig{Dimensions: []domain.Dimension{{
		QuestionID: 1,
		Type:       domain.DimensionNumericRange,
		Ranges: map[string]domain.NumericRange{
			"A": {Min: f(0), Max: f(10)},
			"B": {Min: f(5), Max: f(15)},
		},
	}}}

	assignment, err := NewEngine().Apply(sessions, config, []survey.Question{incomeQuestion})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(assignment[domain.AllResponsesSegment]) != 3 {
		t.Errorf("All responses has %d sessions, want 3", len(assignment[domain.AllResponsesSegment]))
	}
	if _, in := assignment["A"]["s1"]; !in {
		t.Error("value 7 should be in A [0,10]")
	}
	if _, in := assignment["B"]["s1"]; !in {
		t.Error("value 7 should also be in B [5,15]")
	}
	if _, in := assignment["A"]["s2"]; in {
		t.Error("value 12 should not be in A [0,10]")
	}
	if _, in := assignment[domain.UnknownSegment]["s3"]; !in {
		t.Error("blank answer should fall to Unknown")
	}
}

// TestApply_UnboundedRange verifies a nil bound is open on that side.
func TestApply_UnboundedRange(t *testing.T) {
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {1: "250000"},
	})
	config := domain.SegmentationConfig{Dimensions: []domain.Dimension{{
		QuestionID: 1,
		Type:       domain.DimensionNumericRange,
		Ranges: map[string]domain.NumericRange{
			"High": {Min: f(100000), Max: nil},
		},
	}}}

	assignment, err := NewEngine().Apply(sessions, config, []survey.Question{incomeQuestion})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, in := assignment["High"]["s1"]; !in {
		t.Error("250000 should match [100000, +inf)")
	}
}

// TestApply_FormTotalRange verifies a form question contributes the sum of
// its numeric subfields as the dimension value.
func TestApply_FormTotalRange(t *testing.T) {
	budgetQuestion := survey.Question{
		ID:            3,
		PrimaryType:   survey.PrimaryForm,
		SecondaryType: survey.SecondaryFormFields,
		Subfields:     []string{"Rent", "Food"},
		SubfieldValidations: map[string]survey.SubfieldValidation{
			"Rent": {Type: "number"},
			"Food": {Type: "number"},
		},
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {3: map[string]any{"Rent": "800", "Food": "300"}},
		"s2": {3: map[string]any{"Rent": "", "Food": ""}},
	})
	config := domain.SegmentationConfig{Dimensions: []domain.Dimension{{
		QuestionID: 3,
		Type:       domain.DimensionNumericRange,
		Ranges: map[string]domain.NumericRange{
			"Over1k": {Min: f(1000), Max: nil},
		},
	}}}

	assignment, err := NewEngine().Apply(sessions, config, []survey.Question{budgetQuestion})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, in := assignment["Over1k"]["s1"]; !in {
		t.Error("subfield sum 1100 should match Over1k")
	}
	if _, in := assignment[domain.UnknownSegment]["s2"]; !in {
		t.Error("form with no numeric subfield values should fall to Unknown")
	}
}

// TestApply_ChoiceMapping verifies exact and case-folded label matching and
// that multi-select answers can land in multiple destinations.
func TestApply_ChoiceMapping(t *testing.T) {
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {2: []any{"Engineer", "Designer"}},
		"s2": {2: []any{" engineer "}}, // folded match
		"s3": {2: []any{"Intern"}},     // unmapped
		"s4": {2: nil},
	})
	config := domain.SegmentationConfig{Dimensions: []domain.Dimension{{
		QuestionID: 2,
		Type:       domain.DimensionChoiceMapping,
		Mapping: map[string]string{
			"Engineer": "Technical",
			"Designer": "Creative",
		},
	}}}

	assignment, err := NewEngine().Apply(sessions, config, []survey.Question{roleQuestion})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, in := assignment["Technical"]["s1"]; !in {
		t.Error("s1 should be Technical")
	}
	if _, in := assignment["Creative"]["s1"]; !in {
		t.Error("s1 should also be Creative (multi-select)")
	}
	if _, in := assignment["Technical"]["s2"]; !in {
		t.Error("folded label should still map")
	}
	if _, in := assignment[domain.UnknownSegment]["s3"]; !in {
		t.Error("unmapped label should fall to Unknown")
	}
	if _, in := assignment[domain.UnknownSegment]["s4"]; !in {
		t.Error("absent answer should fall to Unknown")
	}
}

// TestApply_ValidationErrors verifies configuration problems are rejected
// before any bucketing.
func TestApply_ValidationErrors(t *testing.T) {
	sessions := survey.SessionSet{}
	questions := []survey.Question{incomeQuestion, roleQuestion}
	engine := NewEngine()

	cases := []struct {
		name   string
		config domain.SegmentationConfig
	}{
		{"no dimensions", domain.SegmentationConfig{}},
		{"missing question id", domain.SegmentationConfig{Dimensions: []domain.Dimension{{
			Type:   domain.DimensionNumericRange,
			Ranges: map[string]domain.NumericRange{"A": {}},
		}}}},
		{"unknown question", domain.SegmentationConfig{Dimensions: []domain.Dimension{{
			QuestionID: 99,
			Type:       domain.DimensionNumericRange,
			Ranges:     map[string]domain.NumericRange{"A": {}},
		}}}},
		{"min above max", domain.SegmentationConfig{Dimensions: []domain.Dimension{{
			QuestionID: 1,
			Type:       domain.DimensionNumericRange,
			Ranges:     map[string]domain.NumericRange{"A": {Min: f(10), Max: f(5)}},
		}}}},
		{"range on choice question", domain.SegmentationConfig{Dimensions: []domain.Dimension{{
			QuestionID: 2,
			Type:       domain.DimensionNumericRange,
			Ranges:     map[string]domain.NumericRange{"A": {}},
		}}}},
		{"mapping on numeric question", domain.SegmentationConfig{Dimensions: []domain.Dimension{{
			QuestionID: 1,
			Type:       domain.DimensionChoiceMapping,
			Mapping:    map[string]string{"x": "X"},
		}}}},
		{"unknown dimension type", domain.SegmentationConfig{Dimensions: []domain.Dimension{{
			QuestionID: 1,
			Type:       "histogram",
		}}}},
	}

	for _, tc := range cases {
		_, err := engine.Apply(sessions, tc.config, questions)
		if err == nil {
			t.Errorf("%s: expected a validation error", tc.name)
			continue
		}
		if errors.GetCode(err) != errors.CodeValidationError {
			t.Errorf("%s: code = %s, want %s", tc.name, errors.GetCode(err), errors.CodeValidationError)
		}
	}
}
