package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"gosurvey/domain/survey"
	"gosurvey/internal/errors"

	"github.com/google/uuid"
)

type questionRow struct {
	ID                  int64          `db:"id"`
	QuestionText        string         `db:"question_text"`
	PrimaryType         string         `db:"primary_type"`
	SecondaryType       string         `db:"secondary_type"`
	Options             []byte         `db:"options"`
	GridRows            []byte         `db:"grid_rows"`
	GridColumns         []byte         `db:"grid_columns"`
	Subfields           []byte         `db:"subfields"`
	SubfieldValidations []byte         `db:"subfield_validations"`
	HasOtherOption      bool           `db:"has_other_option"`
	HasNoneOption       bool           `db:"has_none_option"`
	NoneOptionText      sql.NullString `db:"none_option_text"`
	HasCommentBox       bool           `db:"has_comment_box"`
	DisplayOrder        int            `db:"display_order"`
	CreatedAt           time.Time      `db:"created_at"`
}

// ListQuestions returns the survey's question catalog in display order.
func (r *ResponseCollectorImpl) ListQuestions(ctx context.Context, surveyID uuid.UUID) ([]survey.Question, error) {
	var rows []questionRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, question_text, primary_type, secondary_type,
		       options, grid_rows, grid_columns, subfields, subfield_validations,
		       has_other_option, has_none_option, none_option_text,
		       has_comment_box, display_order, created_at
		FROM survey_questions
		WHERE survey_id = $1
		ORDER BY display_order, id
	`, surveyID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load survey questions")
	}
	if len(rows) == 0 {
		return nil, errors.NotFound("survey questions")
	}

	questions := make([]survey.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.toQuestion())
	}
	return questions, nil
}

func (row questionRow) toQuestion() survey.Question {
	q := survey.Question{
		ID:             survey.QuestionID(row.ID),
		QuestionText:   row.QuestionText,
		PrimaryType:    survey.PrimaryType(row.PrimaryType),
		SecondaryType:  survey.SecondaryType(row.SecondaryType),
		HasOtherOption: row.HasOtherOption,
		HasNoneOption:  row.HasNoneOption,
		NoneOptionText: row.NoneOptionText.String,
		HasCommentBox:  row.HasCommentBox,
		Order:          row.DisplayOrder,
	}
	decodeColumn(row.Options, &q.Options, row.ID, "options")
	decodeColumn(row.GridRows, &q.Rows, row.ID, "grid_rows")
	decodeColumn(row.GridColumns, &q.Columns, row.ID, "grid_columns")
	decodeColumn(row.Subfields, &q.Subfields, row.ID, "subfields")
	decodeColumn(row.SubfieldValidations, &q.SubfieldValidations, row.ID, "subfield_validations")
	return q
}

// decodeColumn decodes one optional JSONB structure column. A null column
// leaves the target zero-valued; malformed JSON is logged and skipped so one
// broken question cannot sink the catalog.
func decodeColumn(raw []byte, target any, questionID int64, column string) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, target); err != nil {
		log.Printf("[Collector] question %d has malformed %s: %v", questionID, column, err)
	}
}
