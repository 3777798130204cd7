package analytics

import (
	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/normalize"
)

// formFieldsNumericAnalytics summarizes each numeric subfield of a form
// question independently. The base count is the number of sessions that
// supplied at least one parseable numeric subfield value; it replaces the
// generic answered count so the workbook reports participation in the numeric
// part of the form, not in the form as a whole.
func (c *Calculator) formFieldsNumericAnalytics(
	question survey.Question,
	sessions survey.SessionSet,
	order []survey.SessionID,
	base domain.Result,
	totalResponses int,
) domain.Result {
	subfields := question.NumericSubfields()
	samples := make(map[string][]float64, len(subfields))

	baseCount := 0
	for _, sid := range order {
		answer := normalize.UnwrapAnswer(sessions[sid].Answer(question.ID))
		m, ok := answer.(map[string]any)
		if !ok {
			continue
		}

		participated := false
		for _, name := range subfields {
			raw, present := m[name]
			if !present || normalize.IsBlank(raw) {
				continue
			}
			value, ok := normalize.ParseNumeric(raw)
			if !ok {
				continue
			}
			samples[name] = append(samples[name], value)
			participated = true
		}
		if participated {
			baseCount++
		}
	}

	stats := make(map[string]domain.NumericStats, len(subfields))
	for _, name := range subfields {
		values := samples[name]
		if len(values) == 0 {
			stats[name] = domain.NumericStats{}
			continue
		}
		stats[name] = summarize(values)
	}

	base.Kind = domain.KindFormFieldsNumeric
	base.QuestionType = survey.SecondaryFormFields
	base.BaseCount = baseCount
	base.AnsweredCount = baseCount
	base.SkippedCount = totalResponses - baseCount
	base.SubfieldOrder = subfields
	base.Subfields = stats
	return base
}
