package ports

import (
	"context"

	"gosurvey/domain/survey"

	"github.com/google/uuid"
)

// ResponseCollector materializes the in-memory session data for a survey
// from storage. Everything downstream of it is pure computation.
type ResponseCollector interface {
	// Collect loads every partial and completed response for a survey and
	// merges them into a Collection.
	Collect(ctx context.Context, surveyID uuid.UUID) (*survey.Collection, error)

	// ListQuestions returns the survey's question catalog in display order.
	ListQuestions(ctx context.Context, surveyID uuid.UUID) ([]survey.Question, error)
}
