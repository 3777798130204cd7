package analytics

import (
	"fmt"
	"strings"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/normalize"
)

// OtherLabel is the synthetic option that absorbs free-form "Other" votes.
const OtherLabel = "Other"

// optionLabelKeys are the keys a structured option object may carry its
// display label under, tried in order.
var optionLabelKeys = []string{"label", "name", "value", "text", "option"}

// OptionLabel extracts the display label from a declared option, which may
// be a plain string or a structured object from the survey builder.
func OptionLabel(raw any) string {
	switch t := raw.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any:
		for _, key := range optionLabelKeys {
			if v, ok := t[key]; ok {
				if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
					return s
				}
			}
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// optionSet is an order-preserving option list with case- and
// whitespace-insensitive matching. The first-seen casing of a label is kept
// for display; later variants of the same label fold into it.
type optionSet struct {
	labels []string
	index  map[string]int // canonical key -> position in labels
}

func newOptionSet() *optionSet {
	return &optionSet{index: make(map[string]int)}
}

// canonicalKey collapses whitespace runs and case so "Very  Small" and
// "very small" count as the same option.
func canonicalKey(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

// add registers a label if unseen and returns its position.
func (os *optionSet) add(label string) int {
	key := canonicalKey(label)
	if pos, ok := os.index[key]; ok {
		return pos
	}
	pos := len(os.labels)
	os.labels = append(os.labels, label)
	os.index[key] = pos
	return pos
}

// lookup returns the position of a label, if registered.
func (os *optionSet) lookup(label string) (int, bool) {
	pos, ok := os.index[canonicalKey(label)]
	return pos, ok
}

// choiceAnalytics tallies selections for radio, multiple_choices and
// dropdown questions. Sessions with zero selections are excluded from the
// denominator entirely, so percentages describe respondents who picked
// something.
func (c *Calculator) choiceAnalytics(
	question survey.Question,
	sessions survey.SessionSet,
	order []survey.SessionID,
	base domain.Result,
) domain.Result {
	options := newOptionSet()
	for _, raw := range question.Options {
		if label := OptionLabel(raw); strings.TrimSpace(label) != "" {
			options.add(label)
		}
	}
	if question.HasOtherOption {
		options.add(OtherLabel)
	}
	if question.HasNoneOption {
		options.add(question.NoneLabel())
	}

	counts := map[int]int{}
	totalResponses := 0

	for _, sid := range order {
		selections := normalize.SelectedValues(sessions[sid].Answer(question.ID))

		voted := false
		for _, selected := range selections {
			pos, ok := c.classifySelection(selected, options)
			if !ok {
				continue
			}
			counts[pos]++
			voted = true
		}
		if voted {
			totalResponses++
		}
	}

	results := make([]domain.OptionCount, len(options.labels))
	for pos, label := range options.labels {
		count := counts[pos]
		results[pos] = domain.OptionCount{
			Option:     label,
			Count:      count,
			Percentage: percentage(count, totalResponses),
		}
	}

	base.Kind = domain.KindChoice
	base.QuestionType = question.SecondaryType
	base.TotalResponses = totalResponses
	base.Options = results
	return base
}

// classifySelection resolves one selected value to an option position. A
// string beginning with "Other:" or a map carrying an "other" key votes for
// the synthetic Other entry. A value absent from the canonical set is
// treated as a newly discovered option and appended, which keeps legacy
// answers countable after the option list was edited.
func (c *Calculator) classifySelection(selected any, options *optionSet) (int, bool) {
	switch t := selected.(type) {
	case string:
		if strings.HasPrefix(t, "Other:") {
			return options.add(OtherLabel), true
		}
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		if pos, ok := options.lookup(t); ok {
			return pos, true
		}
		return options.add(t), true
	case map[string]any:
		if _, ok := t["other"]; ok {
			return options.add(OtherLabel), true
		}
		label := OptionLabel(t)
		if strings.TrimSpace(label) == "" {
			return 0, false
		}
		if pos, ok := options.lookup(label); ok {
			return pos, true
		}
		return options.add(label), true
	case nil:
		return 0, false
	default:
		label := fmt.Sprintf("%v", t)
		if pos, ok := options.lookup(label); ok {
			return pos, true
		}
		return options.add(label), true
	}
}
