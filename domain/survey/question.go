package survey

import "sort"

// QuestionID identifies a question inside a survey.
type QuestionID int64

// PrimaryType is the structural family of a question.
type PrimaryType string

const (
	PrimaryOpenText PrimaryType = "open_text"
	PrimaryForm     PrimaryType = "form"
	PrimaryGrid     PrimaryType = "grid"
)

// SecondaryType refines the primary type into a concrete widget/answer shape.
type SecondaryType string

const (
	SecondaryText            SecondaryType = "text"
	SecondaryParagraph       SecondaryType = "paragraph"
	SecondaryNumber          SecondaryType = "number"
	SecondaryPositiveNumber  SecondaryType = "positive_number"
	SecondaryNegativeNumber  SecondaryType = "negative_number"
	SecondaryEmail           SecondaryType = "email"
	SecondaryRadio           SecondaryType = "radio"
	SecondaryMultipleChoices SecondaryType = "multiple_choices"
	SecondaryDropdown        SecondaryType = "dropdown"
	SecondaryFormFields      SecondaryType = "form_fields"
	SecondaryGridRadio       SecondaryType = "grid_radio"
	SecondaryGridMulti       SecondaryType = "grid_multi"
)

// SubfieldValidation describes how one subfield of a form_fields question is
// validated. Type values mirror the builder UI; unknown values are treated
// as "text".
type SubfieldValidation struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Question is an immutable question descriptor supplied by the survey
// definition. Options, Rows, Columns and Subfields are decoded JSON values,
// so option entries may be plain strings or structured objects.
type Question struct {
	ID            QuestionID    `json:"id"`
	QuestionText  string        `json:"question_text"`
	PrimaryType   PrimaryType   `json:"primary_type"`
	SecondaryType SecondaryType `json:"secondary_type"`
	Order         int           `json:"order"`

	Options   []any    `json:"options,omitempty"`
	Rows      []string `json:"rows,omitempty"`
	Columns   []string `json:"columns,omitempty"`
	Subfields []string `json:"subfields,omitempty"`

	SubfieldValidations map[string]SubfieldValidation `json:"subfield_validations,omitempty"`

	HasOtherOption bool   `json:"has_other_option"`
	HasNoneOption  bool   `json:"has_none_option"`
	NoneOptionText string `json:"none_option_text,omitempty"`
	HasCommentBox  bool   `json:"has_comment_box"`
}

// DefaultNoneLabel is used when a none-of-the-above option carries no custom
// label.
const DefaultNoneLabel = "None of the above"

// NoneLabel returns the display label for the none-of-the-above option.
func (q Question) NoneLabel() string {
	if q.NoneOptionText != "" {
		return q.NoneOptionText
	}
	return DefaultNoneLabel
}

// IsChoice reports whether the question collects selections from a fixed
// option list.
func (q Question) IsChoice() bool {
	if q.PrimaryType != PrimaryForm {
		return false
	}
	switch q.SecondaryType {
	case SecondaryRadio, SecondaryMultipleChoices, SecondaryDropdown:
		return true
	}
	return false
}

// IsMultiSelect reports whether a session may select more than one option.
func (q Question) IsMultiSelect() bool {
	return q.SecondaryType == SecondaryMultipleChoices || q.SecondaryType == SecondaryGridMulti
}

// IsOpenText reports whether the question is a free-text question
// (text or paragraph), the kind removed by the exclude-open-text filter flag.
func (q Question) IsOpenText() bool {
	return q.PrimaryType == PrimaryOpenText &&
		(q.SecondaryType == SecondaryText || q.SecondaryType == SecondaryParagraph)
}

// IsNumericOpenText reports whether the question collects a single numeric
// value as open text.
func (q Question) IsNumericOpenText() bool {
	if q.PrimaryType != PrimaryOpenText {
		return false
	}
	switch q.SecondaryType {
	case SecondaryNumber, SecondaryPositiveNumber, SecondaryNegativeNumber:
		return true
	}
	return false
}

// IsFormFields reports whether the question is a multi-field form.
func (q Question) IsFormFields() bool {
	return q.PrimaryType == PrimaryForm && q.SecondaryType == SecondaryFormFields
}

// numericValidationTypes are the subfield validation types whose values feed
// numeric analytics.
var numericValidationTypes = map[string]bool{
	"number":          true,
	"positive_number": true,
	"negative_number": true,
	"all_numbers":     true,
	"auto_calculate":  true,
}

// totalLikeNames is a fallback heuristic for surveys built before subfield
// validations existed: subfields literally named Total/Sum are numeric.
var totalLikeNames = map[string]bool{
	"Total": true,
	"total": true,
	"Sum":   true,
	"sum":   true,
}

// NumericSubfields returns the declared subfields whose values feed numeric
// analytics, in declaration order. Subfields with an unparseable validation
// type fall back to "text" and are excluded.
func (q Question) NumericSubfields() []string {
	var numeric []string
	seen := map[string]bool{}

	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			numeric = append(numeric, name)
		}
	}

	for _, name := range q.Subfields {
		v, ok := q.SubfieldValidations[name]
		if ok && numericValidationTypes[v.Type] {
			add(name)
			continue
		}
		if totalLikeNames[name] {
			add(name)
		}
	}
	// Validations may reference subfields that are not in the declared list
	// (legacy surveys stored only the validation map). Sorted for stable
	// output across runs.
	var extra []string
	for name, v := range q.SubfieldValidations {
		if numericValidationTypes[v.Type] && !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		add(name)
	}
	return numeric
}

// HasNumericSubfields reports whether at least one subfield feeds numeric
// analytics.
func (q Question) HasNumericSubfields() bool {
	return len(q.NumericSubfields()) > 0
}
