// Package postgres loads survey definitions and responses with sqlx. It is
// the only component that touches storage; everything downstream operates on
// the in-memory Collection it returns.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"gosurvey/domain/survey"
	"gosurvey/internal/errors"
	"gosurvey/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ResponseCollectorImpl implements ResponseCollector for PostgreSQL
type ResponseCollectorImpl struct {
	db *sqlx.DB
}

// NewResponseCollector creates a new PostgreSQL response collector
func NewResponseCollector(db *sqlx.DB) ports.ResponseCollector {
	return &ResponseCollectorImpl{db: db}
}

type partialRow struct {
	SessionID  string         `db:"session_id"`
	QuestionID int64          `db:"question_id"`
	Answer     []byte         `db:"answer"`
	IPAddress  sql.NullString `db:"ip_address"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type responseRow struct {
	ID          uuid.UUID      `db:"id"`
	SessionID   string         `db:"session_id"`
	Answers     []byte         `db:"answers"`
	IPAddress   sql.NullString `db:"ip_address"`
	SubmittedAt time.Time      `db:"submitted_at"`
}

// Collect loads partial answer rows and completed submissions for a survey
// and merges them. A session that both accumulated rows and submitted is
// reported as completed, with the submitted answers winning.
func (r *ResponseCollectorImpl) Collect(ctx context.Context, surveyID uuid.UUID) (*survey.Collection, error) {
	partial, err := r.loadPartialSessions(ctx, surveyID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load partial answers")
	}

	completed, metadata, err := r.loadCompletedSessions(ctx, surveyID, partial)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load completed responses")
	}

	// Sessions that submitted are no longer partial.
	for id := range completed {
		delete(partial, id)
	}

	all := make(survey.SessionSet, len(partial)+len(completed))
	for id, s := range partial {
		all[id] = s
	}
	for id, s := range completed {
		all[id] = s
	}

	log.Printf("[Collector] survey %s: %d completed, %d partial, %d total sessions",
		surveyID, len(completed), len(partial), len(all))

	return &survey.Collection{
		SurveyID:  surveyID,
		Partial:   partial,
		Completed: completed,
		All:       all,
		Metadata:  metadata,
	}, nil
}

func (r *ResponseCollectorImpl) loadPartialSessions(ctx context.Context, surveyID uuid.UUID) (survey.SessionSet, error) {
	var rows []partialRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT session_id, question_id, answer, ip_address, created_at, updated_at
		FROM partial_answers
		WHERE survey_id = $1
		ORDER BY session_id, question_id
	`, surveyID)
	if err != nil {
		return nil, err
	}

	sessions := survey.SessionSet{}
	for _, row := range rows {
		id := survey.SessionID(row.SessionID)
		session, ok := sessions[id]
		if !ok {
			session = survey.Session{
				ID:            id,
				Questions:     map[survey.QuestionID]survey.RawAnswer{},
				IPAddress:     row.IPAddress.String,
				FirstActivity: row.CreatedAt,
				LastActivity:  row.UpdatedAt,
			}
		}

		session.Questions[survey.QuestionID(row.QuestionID)] = decodeAnswer(row.Answer)
		if row.CreatedAt.Before(session.FirstActivity) {
			session.FirstActivity = row.CreatedAt
		}
		if row.UpdatedAt.After(session.LastActivity) {
			session.LastActivity = row.UpdatedAt
		}
		sessions[id] = session
	}
	return sessions, nil
}

func (r *ResponseCollectorImpl) loadCompletedSessions(
	ctx context.Context,
	surveyID uuid.UUID,
	partial survey.SessionSet,
) (survey.SessionSet, map[survey.SessionID]survey.ResponseMeta, error) {
	var rows []responseRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, session_id, answers, ip_address, submitted_at
		FROM survey_responses
		WHERE survey_id = $1
		ORDER BY submitted_at
	`, surveyID)
	if err != nil {
		return nil, nil, err
	}

	completed := survey.SessionSet{}
	metadata := map[survey.SessionID]survey.ResponseMeta{}

	for _, row := range rows {
		id := survey.SessionID(row.SessionID)

		// Start from the partial rows so answers saved in progress but
		// missing from the submission are not lost.
		questions := map[survey.QuestionID]survey.RawAnswer{}
		first := row.SubmittedAt
		if p, ok := partial[id]; ok {
			for qid, answer := range p.Questions {
				questions[qid] = answer
			}
			first = p.FirstActivity
		}
		for qid, answer := range decodeAnswerMap(row.Answers) {
			questions[qid] = answer
		}

		completed[id] = survey.Session{
			ID:            id,
			Questions:     questions,
			IPAddress:     row.IPAddress.String,
			IsCompleted:   true,
			FirstActivity: first,
			LastActivity:  row.SubmittedAt,
		}
		metadata[id] = survey.ResponseMeta{
			ResponseID:  row.ID.String(),
			SubmittedAt: row.SubmittedAt,
		}
	}
	return completed, metadata, nil
}

// decodeAnswer decodes one JSONB answer column. Malformed JSON is treated as
// no answer rather than failing the whole collection.
func decodeAnswer(raw []byte) survey.RawAnswer {
	if len(raw) == 0 {
		return nil
	}
	var answer any
	if err := json.Unmarshal(raw, &answer); err != nil {
		log.Printf("[Collector] skipping undecodable answer: %v", err)
		return nil
	}
	return answer
}

// decodeAnswerMap decodes a submission's full answers JSONB object, keyed by
// question id rendered as a string.
func decodeAnswerMap(raw []byte) map[survey.QuestionID]survey.RawAnswer {
	if len(raw) == 0 {
		return nil
	}
	var byKey map[string]any
	if err := json.Unmarshal(raw, &byKey); err != nil {
		log.Printf("[Collector] skipping undecodable answers object: %v", err)
		return nil
	}

	answers := make(map[survey.QuestionID]survey.RawAnswer, len(byKey))
	for key, value := range byKey {
		qid, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			log.Printf("[Collector] skipping non-numeric question key %q", key)
			continue
		}
		answers[survey.QuestionID(qid)] = value
	}
	return answers
}
