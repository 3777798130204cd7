package survey

import "github.com/google/uuid"

// Collection is the materialized respondent data for one survey: every
// in-progress session, every completed submission, and the merge of both.
// Analytics run over All unless the caller narrows the set.
type Collection struct {
	SurveyID uuid.UUID

	// Partial holds sessions still in progress: answers accumulated row by
	// row without a final submission.
	Partial SessionSet

	// Completed holds submitted responses. When a session also has partial
	// rows, the submitted answers win over the row-level ones.
	Completed SessionSet

	// All is Partial and Completed merged, keyed by session id.
	All SessionSet

	// Metadata attributes completed responses for comment collection.
	Metadata map[SessionID]ResponseMeta
}

// TotalResponses is the respondent denominator: every distinct session that
// left at least one answer row or a submission.
func (c Collection) TotalResponses() int {
	return len(c.All)
}

// CompletedCount is the number of submitted responses.
func (c Collection) CompletedCount() int {
	return len(c.Completed)
}

// PartialCount is the number of sessions that never submitted.
func (c Collection) PartialCount() int {
	return len(c.Partial)
}
