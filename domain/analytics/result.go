// Package analytics defines the result payloads the calculator produces for
// each question. Results form a closed tagged union discriminated by Kind so
// renderers can switch on an explicit variant instead of probing maps.
package analytics

import (
	"time"

	"gosurvey/domain/survey"
)

// Kind discriminates the result variant computed for a question.
type Kind string

const (
	KindChoice            Kind = "choice"
	KindGrid              Kind = "grid"
	KindNumeric           Kind = "numeric"
	KindFormFieldsNumeric Kind = "form_fields_numeric"
	KindOther             Kind = "other"
)

// Comment is one non-blank comment-box entry, attributed to the response
// that carried it.
type Comment struct {
	ResponseID  string    `json:"response_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Comment     string    `json:"comment"`
}

// OptionCount is the tally for one canonical option of a choice question.
type OptionCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ColumnCount is the tally for one column within one grid row.
type ColumnCount struct {
	Column     string  `json:"column"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GridRow holds one row's independent distribution. TotalResponses is the
// number of sessions with at least one valid selection for this row; column
// percentages are relative to it, not to the survey-wide respondent count.
type GridRow struct {
	TotalResponses int           `json:"total_responses"`
	Columns        []ColumnCount `json:"columns"`
}

// NumericStats is the descriptive summary of one numeric sample. Quartiles
// follow the inclusive (spreadsheet QUARTILE.INC) convention. When Count is
// zero every other field is meaningless and renderers show N/A.
type NumericStats struct {
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	Average  float64 `json:"average"`
	Sum      float64 `json:"sum"`
	StdDev   float64 `json:"std_dev"`
	Skewness float64 `json:"skewness"`
}

// Result is the per-question analytics payload. Exactly one of the
// kind-specific sections is populated, matching Kind.
type Result struct {
	Kind         Kind                 `json:"type"`
	QuestionID   survey.QuestionID    `json:"question_id"`
	QuestionText string               `json:"question_text"`
	QuestionType survey.SecondaryType `json:"question_type,omitempty"`

	AnsweredCount int       `json:"answered_count"`
	SkippedCount  int       `json:"skipped_count"`
	Comments      []Comment `json:"comments,omitempty"`

	// KindChoice
	TotalResponses int           `json:"total_responses,omitempty"`
	Options        []OptionCount `json:"results,omitempty"`

	// KindGrid
	RowOrder []string           `json:"row_order,omitempty"`
	Rows     map[string]GridRow `json:"rows,omitempty"`

	// KindNumeric
	Numeric *NumericStats `json:"numeric,omitempty"`

	// KindFormFieldsNumeric
	BaseCount     int                     `json:"base_count,omitempty"`
	SubfieldOrder []string                `json:"subfield_order,omitempty"`
	Subfields     map[string]NumericStats `json:"subfields,omitempty"`

	// KindOther and degraded variants
	Message string `json:"message,omitempty"`
}

// ResultSet maps every analyzed question to its result.
type ResultSet map[survey.QuestionID]Result
