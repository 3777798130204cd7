// Package analytics reduces raw survey answers to per-question descriptive
// statistics. Each question is routed to a type-specific algorithm; malformed
// or unsupported questions degrade to an "other" result instead of aborting
// the whole computation.
package analytics

import (
	"sort"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/normalize"
)

const notAvailableMessage = "Analytics not available for this question type"

// Calculator computes analytics over an in-memory session set. It holds no
// state; two calls with identical inputs produce identical results.
type Calculator struct{}

// NewCalculator creates a new analytics calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate computes a result for every question. totalResponses is the
// denominator for answered/skipped accounting and may exceed len(sessions)
// when the caller considers respondents that never stored an answer row.
func (c *Calculator) Calculate(
	sessions survey.SessionSet,
	questions []survey.Question,
	totalResponses int,
	metadata map[survey.SessionID]survey.ResponseMeta,
) domain.ResultSet {
	results := make(domain.ResultSet, len(questions))
	order := sortedSessionIDs(sessions)

	for _, question := range questions {
		answered := c.countAnswered(sessions, order, question.ID)
		skipped := totalResponses - answered

		var comments []domain.Comment
		if question.HasCommentBox {
			comments = c.collectComments(sessions, order, question.ID, metadata)
		}

		base := domain.Result{
			QuestionID:    question.ID,
			QuestionText:  question.QuestionText,
			AnsweredCount: answered,
			SkippedCount:  skipped,
			Comments:      comments,
		}

		switch {
		case question.PrimaryType == survey.PrimaryGrid:
			results[question.ID] = c.gridAnalytics(question, sessions, order, base)
		case question.IsFormFields():
			if question.HasNumericSubfields() {
				results[question.ID] = c.formFieldsNumericAnalytics(question, sessions, order, base, totalResponses)
			} else {
				base.Kind = domain.KindOther
				base.Message = notAvailableMessage
				results[question.ID] = base
			}
		case question.IsChoice():
			results[question.ID] = c.choiceAnalytics(question, sessions, order, base)
		case question.IsNumericOpenText():
			results[question.ID] = c.numericAnalytics(question, sessions, order, base)
		default:
			base.Kind = domain.KindOther
			base.Message = notAvailableMessage
			results[question.ID] = base
		}
	}

	return results
}

// countAnswered counts sessions whose answer is not effectively blank: an
// {answer, comment} envelope is unwrapped first, so a comment alone does not
// make a question answered.
func (c *Calculator) countAnswered(sessions survey.SessionSet, order []survey.SessionID, id survey.QuestionID) int {
	answered := 0
	for _, sid := range order {
		if !normalize.IsEffectivelyBlank(sessions[sid].Answer(id)) {
			answered++
		}
	}
	return answered
}

// collectComments gathers non-blank comment-box entries. Comments are
// collected even when the main answer is blank, since a respondent may leave
// only commentary.
func (c *Calculator) collectComments(
	sessions survey.SessionSet,
	order []survey.SessionID,
	id survey.QuestionID,
	metadata map[survey.SessionID]survey.ResponseMeta,
) []domain.Comment {
	var comments []domain.Comment
	for _, sid := range order {
		text, ok := normalize.CommentText(sessions[sid].Answer(id))
		if !ok {
			continue
		}
		meta := metadata[sid]
		responseID := meta.ResponseID
		if responseID == "" {
			responseID = string(sid)
		}
		comments = append(comments, domain.Comment{
			ResponseID:  lastN(responseID, 12),
			SubmittedAt: meta.SubmittedAt,
			Comment:     text,
		})
	}
	return comments
}

// sortedSessionIDs fixes the iteration order so repeated runs over the same
// inputs produce identical output (comment order, discovered-option order).
func sortedSessionIDs(sessions survey.SessionSet) []survey.SessionID {
	ids := make([]survey.SessionID, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
