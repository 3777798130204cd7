package normalize

import (
	"testing"

	"gosurvey/domain/survey"
)

// TestIsBlank_CoreCases verifies the shared blank predicate on the values
// every component relies on.
func TestIsBlank_CoreCases(t *testing.T) {
	cases := []struct {
		name  string
		value any
		blank bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"whitespace string", "   \t", true},
		{"zero is information", float64(0), false},
		{"int zero is information", 0, false},
		{"false is information", false, false},
		{"empty list", []any{}, true},
		{"non-empty list", []any{"a"}, false},
		{"empty map", map[string]any{}, true},
		{"comment-only map", map[string]any{"comment": "x"}, true},
		{"comments-only map", map[string]any{"comments": "x"}, true},
		{"map with blank values", map[string]any{"a": "", "b": nil}, true},
		{"map with one real value", map[string]any{"a": "", "b": "y"}, false},
		{"nested blank map", map[string]any{"a": map[string]any{"b": ""}}, true},
		{"text", "hello", false},
	}
	for _, tc := range cases {
		if got := IsBlank(tc.value); got != tc.blank {
			t.Errorf("%s: IsBlank(%v) = %v, want %v", tc.name, tc.value, got, tc.blank)
		}
	}
}

// TestIsEffectivelyBlank_Envelope verifies the answer/comment envelope is
// stripped before checking: a comment alone does not make an answer.
func TestIsEffectivelyBlank_Envelope(t *testing.T) {
	commentOnly := map[string]any{"answer": "", "comment": "interesting"}
	if !IsEffectivelyBlank(commentOnly) {
		t.Error("enveloped blank answer with comment should be effectively blank")
	}

	answered := map[string]any{"answer": "yes", "comment": "sure"}
	if IsEffectivelyBlank(answered) {
		t.Error("enveloped non-blank answer should not be effectively blank")
	}

	// A flat form map without the envelope is checked directly.
	form := map[string]any{"Age": "34"}
	if IsEffectivelyBlank(form) {
		t.Error("flat form answer should not be effectively blank")
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"float", 3.5, 3.5, true},
		{"int", 7, 7, true},
		{"zero is valid", float64(0), 0, true},
		{"plain string", "42", 42, true},
		{"padded string", "  42 ", 42, true},
		{"thousands separator", "1,250", 1250, true},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"word", "many", 0, false},
		{"list", []any{1.0}, 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumeric(tc.value)
		if ok != tc.ok || got != tc.want {
			t.Errorf("%s: ParseNumeric(%v) = (%v, %v), want (%v, %v)", tc.name, tc.value, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSelectedValues(t *testing.T) {
	if got := SelectedValues([]any{"A", "B"}); len(got) != 2 {
		t.Errorf("list answer should yield its elements, got %v", got)
	}
	if got := SelectedValues(map[string]any{"answer": []any{"A"}, "comment": "c"}); len(got) != 1 {
		t.Errorf("enveloped list should be flattened, got %v", got)
	}
	if got := SelectedValues("A"); len(got) != 1 || got[0] != "A" {
		t.Errorf("scalar should yield itself, got %v", got)
	}
	if got := SelectedValues(nil); got != nil {
		t.Errorf("nil should yield nothing, got %v", got)
	}
	if got := SelectedValues("   "); got != nil {
		t.Errorf("blank scalar should yield nothing, got %v", got)
	}
}

// TestFormTotal verifies the unrounded subfield sum used for segmentation
// and filtering over form questions.
func TestFormTotal(t *testing.T) {
	total, ok := FormTotal(map[string]any{"Rent": "1200", "Food": 350.5, "Notes": "n/a"})
	if !ok || total != 1550.5 {
		t.Errorf("FormTotal = (%v, %v), want (1550.5, true)", total, ok)
	}

	// Blank subfields contribute zero, not a failure.
	total, ok = FormTotal(map[string]any{"answer": map[string]any{"Rent": "800", "Food": ""}})
	if !ok || total != 800 {
		t.Errorf("FormTotal with blank subfield = (%v, %v), want (800, true)", total, ok)
	}

	// No numeric subfield at all means no derivable value.
	if _, ok := FormTotal(map[string]any{"Notes": "none"}); ok {
		t.Error("FormTotal should report no value when nothing parses")
	}
	if _, ok := FormTotal("42"); ok {
		t.Error("FormTotal should report no value for a non-map answer")
	}
}

func TestNumericValue(t *testing.T) {
	numberQ := survey.Question{
		ID:            1,
		PrimaryType:   survey.PrimaryOpenText,
		SecondaryType: survey.SecondaryNumber,
	}
	formQ := survey.Question{
		ID:            2,
		PrimaryType:   survey.PrimaryForm,
		SecondaryType: survey.SecondaryFormFields,
		Subfields:     []string{"Rent", "Food"},
		SubfieldValidations: map[string]survey.SubfieldValidation{
			"Rent": {Type: "number"},
			"Food": {Type: "number"},
		},
	}

	if v, ok := NumericValue(numberQ, map[string]any{"answer": "12"}); !ok || v != 12 {
		t.Errorf("scalar question value = (%v, %v), want (12, true)", v, ok)
	}
	if _, ok := NumericValue(numberQ, ""); ok {
		t.Error("blank answer should yield no value")
	}
	if v, ok := NumericValue(formQ, map[string]any{"Rent": "800", "Food": "200"}); !ok || v != 1000 {
		t.Errorf("form question value = (%v, %v), want (1000, true)", v, ok)
	}
}

func TestCommentText(t *testing.T) {
	if text, ok := CommentText(map[string]any{"answer": "x", "comment": "  note  "}); !ok || text != "note" {
		t.Errorf("CommentText = (%q, %v), want (\"note\", true)", text, ok)
	}
	if _, ok := CommentText(map[string]any{"comment": "   "}); ok {
		t.Error("whitespace comment should not count")
	}
	if _, ok := CommentText("plain"); ok {
		t.Error("non-map answer has no comment")
	}
}
