// Package segment partitions a session set into named segments from a
// declarative dimension configuration. Segments may overlap and a session may
// land in several of them; the engine reports what the configuration asks
// for and never deduplicates.
package segment

import (
	"log"
	"strings"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/errors"
	"gosurvey/internal/normalize"
)

// Engine buckets sessions by segmentation dimensions. Stateless.
type Engine struct{}

// NewEngine creates a new segmentation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Apply validates the configuration and buckets every session. The
// "All responses" segment always exists and holds every input session. A
// session with no derivable value for a dimension's question goes to the
// shared "Unknown" bucket.
func (e *Engine) Apply(
	sessions survey.SessionSet,
	config domain.SegmentationConfig,
	questions []survey.Question,
) (domain.SegmentAssignment, error) {
	catalog := questionCatalog(questions)
	if err := e.Validate(config, catalog); err != nil {
		return nil, err
	}

	assignment := domain.SegmentAssignment{}
	all := make(map[survey.SessionID]struct{}, len(sessions))
	for id := range sessions {
		all[id] = struct{}{}
	}
	assignment[domain.AllResponsesSegment] = all

	for _, dim := range config.Dimensions {
		question := catalog[dim.QuestionID]
		switch dim.Type {
		case domain.DimensionNumericRange:
			e.applyNumericRanges(sessions, question, dim, assignment)
		case domain.DimensionChoiceMapping:
			e.applyChoiceMapping(sessions, question, dim, assignment)
		}
	}

	log.Printf("[Segmentation] bucketed %d sessions into %d segments", len(sessions), len(assignment))
	return assignment, nil
}

// Validate checks the configuration against the question catalog before any
// bucketing happens. Configuration problems are the caller's to fix and are
// reported as validation errors, unlike per-answer oddities which degrade
// silently during bucketing.
func (e *Engine) Validate(config domain.SegmentationConfig, catalog map[survey.QuestionID]survey.Question) error {
	if len(config.Dimensions) == 0 {
		return errors.ValidationError("segmentation config has no dimensions")
	}
	for i, dim := range config.Dimensions {
		if dim.QuestionID == 0 {
			return errors.ValidationErrorf("dimension %d is missing question_id", i)
		}
		question, ok := catalog[dim.QuestionID]
		if !ok {
			return errors.ValidationErrorf("dimension %d references unknown question %d", i, dim.QuestionID)
		}
		switch dim.Type {
		case domain.DimensionNumericRange:
			if len(dim.Ranges) == 0 {
				return errors.ValidationErrorf("dimension %d has no ranges", i)
			}
			for name, r := range dim.Ranges {
				if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
					return errors.ValidationErrorf("dimension %d range %q has min > max", i, name)
				}
			}
			if !numericCapable(question) {
				return errors.ValidationErrorf("dimension %d question %d is not numeric", i, dim.QuestionID)
			}
		case domain.DimensionChoiceMapping:
			if len(dim.Mapping) == 0 {
				return errors.ValidationErrorf("dimension %d has no mapping", i)
			}
			if !question.IsChoice() {
				return errors.ValidationErrorf("dimension %d question %d is not a choice question", i, dim.QuestionID)
			}
		default:
			return errors.ValidationErrorf("dimension %d has unknown type %q", i, dim.Type)
		}
	}
	return nil
}

// applyNumericRanges places each session into every range its value
// satisfies. Ranges are inclusive on both ends and are allowed to overlap,
// so one session can join several segments.
func (e *Engine) applyNumericRanges(
	sessions survey.SessionSet,
	question survey.Question,
	dim domain.Dimension,
	assignment domain.SegmentAssignment,
) {
	for name := range dim.Ranges {
		ensureSegment(assignment, name)
	}

	for id, session := range sessions {
		value, ok := normalize.NumericValue(question, session.Answer(question.ID))
		if !ok {
			addToSegment(assignment, domain.UnknownSegment, id)
			continue
		}
		matched := false
		for name, r := range dim.Ranges {
			if r.Contains(value) {
				addToSegment(assignment, name, id)
				matched = true
			}
		}
		if !matched {
			addToSegment(assignment, domain.UnknownSegment, id)
		}
	}
}

// applyChoiceMapping maps every selected label of every session through the
// dimension's label-to-segment table. Matching tries the exact label first,
// then falls back to a trimmed case-insensitive comparison. Multi-select
// sessions can land in several destination segments.
func (e *Engine) applyChoiceMapping(
	sessions survey.SessionSet,
	question survey.Question,
	dim domain.Dimension,
	assignment domain.SegmentAssignment,
) {
	folded := make(map[string]string, len(dim.Mapping))
	for label, segment := range dim.Mapping {
		folded[foldLabel(label)] = segment
		ensureSegment(assignment, segment)
	}

	for id, session := range sessions {
		selections := normalize.SelectedValues(session.Answer(question.ID))
		if len(selections) == 0 {
			addToSegment(assignment, domain.UnknownSegment, id)
			continue
		}
		matched := false
		for _, selected := range selections {
			label, ok := selected.(string)
			if !ok {
				continue
			}
			segment, ok := dim.Mapping[label]
			if !ok {
				segment, ok = folded[foldLabel(label)]
			}
			if !ok {
				continue
			}
			addToSegment(assignment, segment, id)
			matched = true
		}
		if !matched {
			addToSegment(assignment, domain.UnknownSegment, id)
		}
	}
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

func ensureSegment(assignment domain.SegmentAssignment, name string) {
	if _, ok := assignment[name]; !ok {
		assignment[name] = make(map[survey.SessionID]struct{})
	}
}

func addToSegment(assignment domain.SegmentAssignment, name string, id survey.SessionID) {
	ensureSegment(assignment, name)
	assignment[name][id] = struct{}{}
}
