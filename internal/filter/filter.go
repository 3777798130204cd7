// Package filter narrows a session set by declarative predicates before
// analytics run. Filters combine with AND; option lists inside one choice
// filter combine with OR.
package filter

import (
	"log"
	"strings"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/errors"
	"gosurvey/internal/normalize"
)

// Engine applies filter requests to session sets. Stateless.
type Engine struct{}

// NewEngine creates a new filter engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Apply validates the request and returns the subset of sessions matching
// every filter. The input set is not mutated. ExcludeOpenText does not
// affect session selection; the caller applies it to the question catalog
// via PruneQuestions.
func (e *Engine) Apply(
	sessions survey.SessionSet,
	request domain.FilterRequest,
	questions []survey.Question,
) (survey.SessionSet, error) {
	catalog := questionCatalog(questions)
	if err := e.Validate(request, catalog); err != nil {
		return nil, err
	}

	kept := make(survey.SessionSet, len(sessions))
	for id, session := range sessions {
		if e.matchesAll(session, request.Filters, catalog) {
			kept[id] = session
		}
	}

	log.Printf("[Filter] %d of %d sessions match %d filters", len(kept), len(sessions), len(request.Filters))
	return kept, nil
}

// PruneQuestions returns the question catalog with free-text questions
// removed when the request asks for it. Dropping the question here removes
// it from the result set entirely, not just from filtering.
func (e *Engine) PruneQuestions(questions []survey.Question, request domain.FilterRequest) []survey.Question {
	if !request.ExcludeOpenText {
		return questions
	}
	kept := make([]survey.Question, 0, len(questions))
	for _, q := range questions {
		if q.IsOpenText() {
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

// Validate checks every filter against the question catalog before any
// session is tested.
func (e *Engine) Validate(request domain.FilterRequest, catalog map[survey.QuestionID]survey.Question) error {
	for i, f := range request.Filters {
		if f.QuestionID == 0 {
			return errors.ValidationErrorf("filter %d is missing question_id", i)
		}
		question, ok := catalog[f.QuestionID]
		if !ok {
			return errors.ValidationErrorf("filter %d references unknown question %d", i, f.QuestionID)
		}
		hasOptions := len(f.SelectedOptions) > 0
		hasRange := f.Range != nil
		switch {
		case hasOptions && hasRange:
			return errors.ValidationErrorf("filter %d sets both selected_options and numeric_range", i)
		case hasOptions:
			if !question.IsChoice() {
				return errors.ValidationErrorf("filter %d question %d is not a choice question", i, f.QuestionID)
			}
		case hasRange:
			if f.Range.Min != nil && f.Range.Max != nil && *f.Range.Min > *f.Range.Max {
				return errors.ValidationErrorf("filter %d numeric_range has min > max", i)
			}
			if !numericCapable(question) {
				return errors.ValidationErrorf("filter %d question %d is not numeric", i, f.QuestionID)
			}
		default:
			return errors.ValidationErrorf("filter %d sets neither selected_options nor numeric_range", i)
		}
	}
	return nil
}

func (e *Engine) matchesAll(session survey.Session, filters []domain.Filter, catalog map[survey.QuestionID]survey.Question) bool {
	for _, f := range filters {
		if !e.matches(session, f, catalog[f.QuestionID]) {
			return false
		}
	}
	return true
}

func (e *Engine) matches(session survey.Session, f domain.Filter, question survey.Question) bool {
	answer := session.Answer(f.QuestionID)

	if len(f.SelectedOptions) > 0 {
		wanted := make(map[string]bool, len(f.SelectedOptions))
		for _, option := range f.SelectedOptions {
			wanted[foldLabel(option)] = true
		}
		for _, selected := range normalize.SelectedValues(answer) {
			label, ok := selected.(string)
			if !ok {
				continue
			}
			if wanted[foldLabel(label)] {
				return true
			}
		}
		return false
	}

	// A blank answer never matches a numeric range, even an unbounded one.
	value, ok := normalize.NumericValue(question, answer)
	if !ok {
		return false
	}
	return f.Range.Contains(value)
}

func numericCapable(q survey.Question) bool {
	if q.IsNumericOpenText() {
		return true
	}
	return q.IsFormFields() && q.HasNumericSubfields()
}

func questionCatalog(questions []survey.Question) map[survey.QuestionID]survey.Question {
	catalog := make(map[survey.QuestionID]survey.Question, len(questions))
	for _, q := range questions {
		catalog[q.ID] = q
	}
	return catalog
}

func foldLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
