package migration

import (
	"context"
	"fmt"

	"gosurvey/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSurveysTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create surveys table")
	}

	if err := r.createQuestionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create survey_questions table")
	}

	if err := r.createPartialAnswersTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create partial_answers table")
	}

	if err := r.createResponsesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create survey_responses table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSurveysTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS surveys (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title VARCHAR(255) NOT NULL,
			description TEXT,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createQuestionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS survey_questions (
			id BIGSERIAL PRIMARY KEY,
			survey_id UUID NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
			question_text TEXT NOT NULL,
			primary_type VARCHAR(20) NOT NULL,
			secondary_type VARCHAR(30) NOT NULL,
			options JSONB,
			grid_rows JSONB,
			grid_columns JSONB,
			subfields JSONB,
			subfield_validations JSONB,
			has_other_option BOOLEAN DEFAULT false,
			has_none_option BOOLEAN DEFAULT false,
			none_option_text VARCHAR(255),
			has_comment_box BOOLEAN DEFAULT false,
			display_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

// Partial answers are one row per (session, question). A respondent still
// filling in the survey accumulates rows here; completion moves the merged
// answer map into survey_responses.
func (r *MigrationRunner) createPartialAnswersTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS partial_answers (
			id BIGSERIAL PRIMARY KEY,
			survey_id UUID NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
			session_id VARCHAR(64) NOT NULL,
			question_id BIGINT NOT NULL REFERENCES survey_questions(id) ON DELETE CASCADE,
			answer JSONB,
			ip_address VARCHAR(45),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			UNIQUE(survey_id, session_id, question_id)
		)
	`)
	return err
}

func (r *MigrationRunner) createResponsesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS survey_responses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			survey_id UUID NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
			session_id VARCHAR(64) NOT NULL,
			answers JSONB NOT NULL DEFAULT '{}',
			ip_address VARCHAR(45),
			submitted_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_questions_survey_order ON survey_questions(survey_id, display_order)",

		"CREATE INDEX IF NOT EXISTS idx_partial_survey_session ON partial_answers(survey_id, session_id)",
		"CREATE INDEX IF NOT EXISTS idx_partial_updated_at ON partial_answers(updated_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_responses_survey_id ON survey_responses(survey_id)",
		"CREATE INDEX IF NOT EXISTS idx_responses_survey_session ON survey_responses(survey_id, session_id)",
		"CREATE INDEX IF NOT EXISTS idx_responses_submitted_at ON survey_responses(submitted_at DESC)",
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Log but don't fail on index creation errors
			fmt.Printf("Warning: failed to create index: %v\n", err)
		}
	}

	return nil
}
