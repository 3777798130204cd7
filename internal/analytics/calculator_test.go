package analytics

import (
	"reflect"
	"testing"
	"time"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
)

func makeSessions(answers map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer) survey.SessionSet {
	set := make(survey.SessionSet, len(answers))
	for id, qs := range answers {
		set[id] = survey.Session{ID: id, Questions: qs}
	}
	return set
}

// TestChoiceAnalytics_Denominator verifies sessions with zero selections are
// excluded from the denominator entirely and single-select counts sum to it.
func TestChoiceAnalytics_Denominator(t *testing.T) {
	question := survey.Question{
		ID:            10,
		PrimaryType:   survey.PrimaryForm,
		SecondaryType: survey.SecondaryRadio,
		Options:       []any{"Red", "Blue"},
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {10: "Red"},
		"s2": {10: "blue"}, // case variant folds into Blue
		"s3": {10: ""},     // no selection, not in denominator
		"s4": {10: "Red"},
	})

	results := NewCalculator().Calculate(sessions, []survey.Question{question}, 4, nil)
	r := results[10]

	if r.Kind != domain.KindChoice {
		t.Fatalf("Kind = %s, want choice", r.Kind)
	}
	if r.TotalResponses != 3 {
		t.Errorf("TotalResponses = %d, want 3", r.TotalResponses)
	}
	if r.AnsweredCount != 3 || r.SkippedCount != 1 {
		t.Errorf("answered/skipped = %d/%d, want 3/1", r.AnsweredCount, r.SkippedCount)
	}

	sum := 0
	byOption := map[string]domain.OptionCount{}
	for _, oc := range r.Options {
		sum += oc.Count
		byOption[oc.Option] = oc
	}
	if sum != r.TotalResponses {
		t.Errorf("single-select counts sum to %d, want %d", sum, r.TotalResponses)
	}
	if byOption["Red"].Count != 2 {
		t.Errorf("Red count = %d, want 2", byOption["Red"].Count)
	}
	if byOption["Blue"].Count != 1 {
		t.Errorf("Blue count = %d, want 1", byOption["Blue"].Count)
	}
	if byOption["Red"].Percentage != 66.67 {
		t.Errorf("Red percentage = %v, want 66.67", byOption["Red"].Percentage)
	}
}

// TestChoiceAnalytics_OtherAndDiscovered verifies "Other:" votes fold into
// the synthetic Other entry and unknown labels are appended, not dropped.
func TestChoiceAnalytics_OtherAndDiscovered(t *testing.T) {
	question := survey.Question{
		ID:             11,
		PrimaryType:    survey.PrimaryForm,
		SecondaryType:  survey.SecondaryMultipleChoices,
		Options:        []any{"Cat"},
		HasOtherOption: true,
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {11: []any{"Cat", "Other: ferret"}},
		"s2": {11: []any{"Axolotl"}}, // label removed from the builder, still counted
		"s3": {11: map[string]any{"answer": []any{map[string]any{"other": "stick insect"}}}},
	})

	r := NewCalculator().Calculate(sessions, []survey.Question{question}, 3, nil)[11]

	byOption := map[string]int{}
	for _, oc := range r.Options {
		byOption[oc.Option] = oc.Count
	}
	if byOption["Other"] != 2 {
		t.Errorf("Other count = %d, want 2", byOption["Other"])
	}
	if byOption["Axolotl"] != 1 {
		t.Errorf("discovered option count = %d, want 1", byOption["Axolotl"])
	}
	if r.Options[0].Option != "Cat" {
		t.Errorf("declared option order lost, first = %q", r.Options[0].Option)
	}
}

// TestGridAnalytics_RowDenominators verifies each row is an independent
// distribution whose denominator counts only sessions with a recognized
// selection for that row.
func TestGridAnalytics_RowDenominators(t *testing.T) {
	question := survey.Question{
		ID:            20,
		PrimaryType:   survey.PrimaryGrid,
		SecondaryType: survey.SecondaryGridRadio,
		Rows:          []string{"Service", "Price"},
		Columns:       []string{"Good", "Bad"},
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {20: map[string]any{"Service": "Good", "Price": "Bad"}},
		"s2": {20: map[string]any{"Service": "Good"}},
		"s3": {20: map[string]any{"Price": "Mediocre"}}, // unknown column, dropped
	})

	r := NewCalculator().Calculate(sessions, []survey.Question{question}, 3, nil)[20]

	if r.Kind != domain.KindGrid {
		t.Fatalf("Kind = %s, want grid", r.Kind)
	}
	service := r.Rows["Service"]
	if service.TotalResponses != 2 {
		t.Errorf("Service denominator = %d, want 2", service.TotalResponses)
	}
	if service.Columns[0].Count != 2 || service.Columns[0].Percentage != 100 {
		t.Errorf("Service/Good = %d (%v%%), want 2 (100%%)", service.Columns[0].Count, service.Columns[0].Percentage)
	}
	price := r.Rows["Price"]
	if price.TotalResponses != 1 {
		t.Errorf("Price denominator = %d, want 1", price.TotalResponses)
	}
	if price.Columns[1].Count != 1 {
		t.Errorf("Price/Bad = %d, want 1", price.Columns[1].Count)
	}
}

// TestGridAnalytics_MissingStructure verifies a grid without configured rows
// or columns degrades to an explanatory message instead of failing.
func TestGridAnalytics_MissingStructure(t *testing.T) {
	question := survey.Question{
		ID:            21,
		PrimaryType:   survey.PrimaryGrid,
		SecondaryType: survey.SecondaryGridRadio,
	}
	r := NewCalculator().Calculate(survey.SessionSet{}, []survey.Question{question}, 0, nil)[21]
	if r.Kind != domain.KindOther {
		t.Errorf("Kind = %s, want other", r.Kind)
	}
	if r.Message != gridStructureMissingMessage {
		t.Errorf("Message = %q, want %q", r.Message, gridStructureMissingMessage)
	}
}

// TestNumericAnalytics verifies scalar zeros count, nested zeros are dropped
// and an empty sample yields the no-responses payload.
func TestNumericAnalytics(t *testing.T) {
	question := survey.Question{
		ID:            30,
		PrimaryType:   survey.PrimaryOpenText,
		SecondaryType: survey.SecondaryNumber,
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {30: "4"},
		"s2": {30: float64(0)}, // direct zero counts
		"s3": {30: map[string]any{"answer": map[string]any{"a": "2", "b": 0}}}, // nested zero dropped
		"s4": {30: ""},
	})

	r := NewCalculator().Calculate(sessions, []survey.Question{question}, 4, nil)[30]
	if r.Kind != domain.KindNumeric {
		t.Fatalf("Kind = %s, want numeric", r.Kind)
	}
	if r.Numeric.Count != 3 {
		t.Errorf("Count = %d, want 3 (4, 0, nested 2)", r.Numeric.Count)
	}
	if r.Numeric.Sum != 6 {
		t.Errorf("Sum = %v, want 6", r.Numeric.Sum)
	}
	if r.Numeric.Min != 0 || r.Numeric.Max != 4 {
		t.Errorf("Min/Max = %v/%v, want 0/4", r.Numeric.Min, r.Numeric.Max)
	}
}

func TestNumericAnalytics_Empty(t *testing.T) {
	question := survey.Question{
		ID:            31,
		PrimaryType:   survey.PrimaryOpenText,
		SecondaryType: survey.SecondaryPositiveNumber,
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {31: "many"},
	})
	r := NewCalculator().Calculate(sessions, []survey.Question{question}, 1, nil)[31]
	if r.Numeric == nil || r.Numeric.Count != 0 {
		t.Fatalf("empty sample should report count 0, got %+v", r.Numeric)
	}
	if r.Message != noNumericResponsesMessage {
		t.Errorf("Message = %q, want %q", r.Message, noNumericResponsesMessage)
	}
}

// TestFormFieldsNumeric verifies base-count semantics: an explicit zero in
// one subfield includes the session, an all-blank session is excluded, and
// answered/skipped are overridden by the base count.
func TestFormFieldsNumeric(t *testing.T) {
	question := survey.Question{
		ID:            40,
		PrimaryType:   survey.PrimaryForm,
		SecondaryType: survey.SecondaryFormFields,
		Subfields:     []string{"Rent", "Food"},
		SubfieldValidations: map[string]survey.SubfieldValidation{
			"Rent": {Type: "number"},
			"Food": {Type: "number"},
		},
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {40: map[string]any{"Rent": "800", "Food": "200"}},
		"s2": {40: map[string]any{"Rent": float64(0), "Food": ""}}, // zero keeps the session
		"s3": {40: map[string]any{"Rent": "", "Food": ""}},         // all blank, excluded
		"s4": {40: map[string]any{"Rent": "cheap"}},                // unparseable, excluded
	})

	r := NewCalculator().Calculate(sessions, []survey.Question{question}, 4, nil)[40]
	if r.Kind != domain.KindFormFieldsNumeric {
		t.Fatalf("Kind = %s, want form_fields_numeric", r.Kind)
	}
	if r.BaseCount != 2 {
		t.Errorf("BaseCount = %d, want 2", r.BaseCount)
	}
	if r.AnsweredCount != 2 || r.SkippedCount != 2 {
		t.Errorf("answered/skipped = %d/%d, want 2/2 (base count overrides)", r.AnsweredCount, r.SkippedCount)
	}
	if got := r.Subfields["Rent"].Count; got != 2 {
		t.Errorf("Rent sample size = %d, want 2", got)
	}
	if got := r.Subfields["Food"].Count; got != 1 {
		t.Errorf("Food sample size = %d, want 1 (blank not zero-filled)", got)
	}
	if !reflect.DeepEqual(r.SubfieldOrder, []string{"Rent", "Food"}) {
		t.Errorf("SubfieldOrder = %v, want declared order", r.SubfieldOrder)
	}
}

// TestCalculate_AnsweredSkippedInvariant verifies answered + skipped equals
// the supplied respondent total for an open-text question routed to "other".
func TestCalculate_AnsweredSkippedInvariant(t *testing.T) {
	question := survey.Question{
		ID:            50,
		PrimaryType:   survey.PrimaryOpenText,
		SecondaryType: survey.SecondaryParagraph,
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {50: "long story"},
		"s2": {50: ""},
	})

	r := NewCalculator().Calculate(sessions, []survey.Question{question}, 5, nil)[50]
	if r.Kind != domain.KindOther {
		t.Fatalf("Kind = %s, want other", r.Kind)
	}
	if r.AnsweredCount+r.SkippedCount != 5 {
		t.Errorf("answered+skipped = %d, want 5", r.AnsweredCount+r.SkippedCount)
	}
	if r.Message != notAvailableMessage {
		t.Errorf("Message = %q, want %q", r.Message, notAvailableMessage)
	}
}

// TestCalculate_Comments verifies comment collection is independent of the
// main answer and attributes the trailing response id characters.
func TestCalculate_Comments(t *testing.T) {
	question := survey.Question{
		ID:            60,
		PrimaryType:   survey.PrimaryOpenText,
		SecondaryType: survey.SecondaryText,
		HasCommentBox: true,
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {60: map[string]any{"answer": "", "comment": "main answer left empty"}},
		"s2": {60: map[string]any{"answer": "hi", "comment": "  "}},
	})
	submitted := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	metadata := map[survey.SessionID]survey.ResponseMeta{
		"s1": {ResponseID: "resp-0123456789abcdef", SubmittedAt: submitted},
	}

	r := NewCalculator().Calculate(sessions, []survey.Question{question}, 2, metadata)[60]
	if len(r.Comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(r.Comments))
	}
	c := r.Comments[0]
	if c.Comment != "main answer left empty" {
		t.Errorf("Comment = %q", c.Comment)
	}
	if c.ResponseID != "456789abcdef" {
		t.Errorf("ResponseID = %q, want last 12 chars", c.ResponseID)
	}
	if !c.SubmittedAt.Equal(submitted) {
		t.Errorf("SubmittedAt = %v, want %v", c.SubmittedAt, submitted)
	}
}

// TestCalculate_Idempotent verifies two runs over identical input produce
// identical output, including slice ordering.
func TestCalculate_Idempotent(t *testing.T) {
	questions := []survey.Question{
		{ID: 10, PrimaryType: survey.PrimaryForm, SecondaryType: survey.SecondaryMultipleChoices, Options: []any{"A", "B"}},
		{ID: 30, PrimaryType: survey.PrimaryOpenText, SecondaryType: survey.SecondaryNumber},
	}
	sessions := makeSessions(map[survey.SessionID]map[survey.QuestionID]survey.RawAnswer{
		"s1": {10: []any{"A", "Zeta"}, 30: "1"},
		"s2": {10: []any{"Yankee"}, 30: "2"},
		"s3": {10: []any{"B"}, 30: "3"},
	})

	calc := NewCalculator()
	first := calc.Calculate(sessions, questions, 3, nil)
	second := calc.Calculate(sessions, questions, 3, nil)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated calculation differs; iteration order leaked into output")
	}
}
