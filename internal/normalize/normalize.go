// Package normalize is the single home for the blank-value and numeric
// parsing conventions shared by analytics, segmentation and filtering.
// Every other component calls these predicates; none reimplements them,
// so "answered" means the same thing everywhere.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"gosurvey/domain/survey"
)

// commentKeys are map keys that carry side commentary rather than answer
// content. They are excluded before deciding whether a map answer is blank.
var commentKeys = map[string]bool{
	"comment":  true,
	"comments": true,
}

// IsBlank reports whether a decoded answer value carries no information:
// nil, an empty or whitespace-only string, an empty slice, or a map whose
// non-comment entries are all themselves blank. Zero is never blank.
func IsBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		for key, val := range t {
			if commentKeys[key] {
				continue
			}
			if !IsBlank(val) {
				return false
			}
		}
		return true
	default:
		// Numbers (including 0) and booleans are information.
		return false
	}
}

// UnwrapAnswer strips the {answer, comment} envelope when present and
// returns the inner value. Any other value passes through unchanged.
func UnwrapAnswer(answer survey.RawAnswer) any {
	m, ok := answer.(map[string]any)
	if !ok {
		return answer
	}
	if inner, ok := m["answer"]; ok {
		return inner
	}
	return answer
}

// IsEffectivelyBlank reports whether an answer is blank once its
// {answer, comment} envelope, if any, is removed. A comment alone does not
// make a question answered.
func IsEffectivelyBlank(answer survey.RawAnswer) bool {
	return IsBlank(UnwrapAnswer(answer))
}

// ParseNumeric parses a decoded answer value as a float. Blank values and
// unparseable strings report ok=false; they never panic or error. Strings
// are trimmed and thousands separators removed before parsing, so "1,250"
// parses as 1250. Zero is a valid value, distinct from blank.
func ParseNumeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
		cleaned := strings.ReplaceAll(s, ",", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// SelectedValues flattens a choice answer into its list of selections:
// a list answer yields its elements, an enveloped answer yields the inner
// value (flattened the same way), and a non-blank scalar yields itself.
// Blank answers yield nothing.
func SelectedValues(answer survey.RawAnswer) []any {
	switch t := answer.(type) {
	case nil:
		return nil
	case []any:
		return t
	case map[string]any:
		inner, ok := t["answer"]
		if !ok {
			return nil
		}
		if list, ok := inner.([]any); ok {
			return list
		}
		if IsBlank(inner) {
			return nil
		}
		return []any{inner}
	default:
		if IsBlank(answer) {
			return nil
		}
		return []any{answer}
	}
}

// FormTotal sums every numeric subfield value of a form answer without
// rounding. Blank subfields contribute 0. The second return is false when
// the answer has no numeric subfield at all, in which case the session has
// no derivable value for numeric segmentation or filtering.
func FormTotal(answer survey.RawAnswer) (float64, bool) {
	inner := UnwrapAnswer(answer)
	m, ok := inner.(map[string]any)
	if !ok {
		return 0, false
	}
	total := 0.0
	anyNumeric := false
	for key, v := range m {
		if commentKeys[key] {
			continue
		}
		if parsed, ok := ParseNumeric(v); ok {
			total += parsed
			anyNumeric = true
		}
	}
	if !anyNumeric {
		return 0, false
	}
	return total, true
}

// NumericValue derives the single numeric value a session holds for a
// question. Multi-field numeric forms contribute the unrounded sum of their
// numeric subfield values; every other question contributes its parsed
// scalar. Segmentation and filtering both go through here so a session lands
// on the same side of a range boundary in both.
func NumericValue(q survey.Question, answer survey.RawAnswer) (float64, bool) {
	if q.IsFormFields() && q.HasNumericSubfields() {
		return FormTotal(answer)
	}
	if IsEffectivelyBlank(answer) {
		return 0, false
	}
	return ParseNumeric(UnwrapAnswer(answer))
}

// CommentText extracts the trimmed comment carried by a map answer, if any.
func CommentText(answer survey.RawAnswer) (string, bool) {
	m, ok := answer.(map[string]any)
	if !ok {
		return "", false
	}
	raw, ok := m["comment"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
