package analytics

import (
	"sort"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/normalize"
)

const noNumericResponsesMessage = "No valid numeric responses"

// numericAnalytics summarizes open-text number questions. Effectively blank
// answers are skipped outright; skipping is never zero-filled. Quartiles use
// the inclusive method so the exported numbers line up with spreadsheet
// QUARTILE.INC formulas over the same sample.
func (c *Calculator) numericAnalytics(
	question survey.Question,
	sessions survey.SessionSet,
	order []survey.SessionID,
	base domain.Result,
) domain.Result {
	var values []float64

	for _, sid := range order {
		answer := sessions[sid].Answer(question.ID)
		if normalize.IsEffectivelyBlank(answer) {
			continue
		}
		values = append(values, extractNumericValues(answer)...)
	}

	base.Kind = domain.KindNumeric
	if len(values) == 0 {
		base.Message = noNumericResponsesMessage
		base.Numeric = &domain.NumericStats{}
		return base
	}

	summary := summarize(values)
	base.Numeric = &summary
	return base
}

// extractNumericValues pulls every numeric value out of one answer. A plain
// scalar contributes its parsed value, zero included. A map answer (the
// legacy multi-value encoding, enveloped or not) contributes each nested
// numeric value, except exact zeros: in that nested shape a stored zero is
// indistinguishable from an untouched field, so it is dropped.
func extractNumericValues(answer survey.RawAnswer) []float64 {
	m, ok := answer.(map[string]any)
	if !ok {
		if parsed, ok := normalize.ParseNumeric(answer); ok {
			return []float64{parsed}
		}
		return nil
	}

	inner, enveloped := m["answer"]
	if enveloped {
		if nested, ok := inner.(map[string]any); ok {
			return nestedNumericValues(nested)
		}
		if parsed, ok := normalize.ParseNumeric(inner); ok {
			return []float64{parsed}
		}
		return nil
	}

	return nestedNumericValues(m)
}

func nestedNumericValues(m map[string]any) []float64 {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var values []float64
	for _, key := range keys {
		parsed, ok := normalize.ParseNumeric(m[key])
		if !ok || parsed == 0 {
			continue
		}
		values = append(values, parsed)
	}
	return values
}
