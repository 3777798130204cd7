package survey

import "time"

// SessionID identifies one survey attempt. IDs are opaque strings issued by
// the response collector (UUIDs in practice).
type SessionID string

// RawAnswer is a decoded JSON answer value. Depending on the question shape
// it may be nil, a scalar, a []any of selections, or a map[string]any:
// an {answer, comment} envelope, a subfield-name to value form answer, or a
// row-label to value grid answer.
type RawAnswer any

// Session holds every answer one respondent gave, keyed by question.
type Session struct {
	ID            SessionID                `json:"id"`
	Questions     map[QuestionID]RawAnswer `json:"questions"`
	IPAddress     string                   `json:"ip_address,omitempty"`
	IsCompleted   bool                     `json:"is_completed"`
	FirstActivity time.Time                `json:"first_activity,omitempty"`
	LastActivity  time.Time                `json:"last_activity,omitempty"`
}

// Answer returns the raw answer for a question, nil when the session never
// touched it.
func (s Session) Answer(id QuestionID) RawAnswer {
	if s.Questions == nil {
		return nil
	}
	return s.Questions[id]
}

// SessionSet is the in-memory session map the calculator operates on.
type SessionSet map[SessionID]Session

// Subset returns the sessions whose ids appear in keep.
func (ss SessionSet) Subset(keep map[SessionID]struct{}) SessionSet {
	out := make(SessionSet, len(keep))
	for id := range keep {
		if s, ok := ss[id]; ok {
			out[id] = s
		}
	}
	return out
}

// ResponseMeta attributes a session to its stored response for comment
// reporting.
type ResponseMeta struct {
	ResponseID  string    `json:"response_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}
