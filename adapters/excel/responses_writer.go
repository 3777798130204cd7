package excel

import (
	"sort"
	"strings"

	"gosurvey/domain/survey"
	"gosurvey/internal/analytics"
	"gosurvey/internal/errors"
	"gosurvey/internal/normalize"
	"gosurvey/ports"

	"github.com/xuri/excelize/v2"
)

// ResponsesWriter dumps raw responses into a workbook with one sheet per
// completion state. Questions with structured answers fan out into
// sub-columns under a merged two-row header: one column per grid row, form
// subfield or multi-select option.
type ResponsesWriter struct{}

// NewResponsesWriter creates a new raw responses workbook writer.
func NewResponsesWriter() ports.ResponseRenderer {
	return &ResponsesWriter{}
}

const metaColumns = 5

// questionLayout is the resolved sub-column plan for one question.
type questionLayout struct {
	question   survey.Question
	subColumns []string
	fanOut     bool // multi-select option fan-out marks cells instead of printing values
}

// RenderResponses writes Completed, Partial and All sheets sharing one
// column layout discovered from the question catalog and the answers.
func (w *ResponsesWriter) RenderResponses(collection *survey.Collection, questions []survey.Question) ([]byte, error) {
	layouts := buildLayouts(questions, collection.All)

	f := excelize.NewFile()
	defer f.Close()
	bold := boldStyle(f)

	sheets := []struct {
		name     string
		sessions survey.SessionSet
	}{
		{"Completed", collection.Completed},
		{"Partial", collection.Partial},
		{"All", collection.All},
	}

	for i, def := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", def.name); err != nil {
				return nil, errors.RenderError("failed to name responses sheet", err)
			}
		} else {
			if _, err := f.NewSheet(def.name); err != nil {
				return nil, errors.RenderError("failed to add responses sheet", err)
			}
		}
		w.writeSheet(f, bold, def.name, def.sessions, layouts)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.RenderError("failed to serialize responses workbook", err)
	}
	return buf.Bytes(), nil
}

// buildLayouts resolves the sub-columns of every question. Form questions
// pick up subfields observed only in answers (legacy surveys), sorted after
// the declared ones for stable output.
func buildLayouts(questions []survey.Question, sessions survey.SessionSet) []questionLayout {
	layouts := make([]questionLayout, 0, len(questions))
	for _, q := range questions {
		layout := questionLayout{question: q}
		switch {
		case q.PrimaryType == survey.PrimaryGrid:
			layout.subColumns = q.Rows
		case q.IsFormFields():
			layout.subColumns = formSubColumns(q, sessions)
		case q.SecondaryType == survey.SecondaryMultipleChoices:
			layout.fanOut = true
			layout.subColumns = optionSubColumns(q)
		}
		if len(layout.subColumns) == 0 {
			layout.subColumns = []string{""}
		}
		if q.HasCommentBox {
			layout.subColumns = append(layout.subColumns, "Comment")
		}
		layouts = append(layouts, layout)
	}
	return layouts
}

func formSubColumns(q survey.Question, sessions survey.SessionSet) []string {
	columns := append([]string(nil), q.Subfields...)
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		seen[name] = true
	}

	var extra []string
	for _, session := range sessions {
		m, ok := normalize.UnwrapAnswer(session.Answer(q.ID)).(map[string]any)
		if !ok {
			continue
		}
		for key := range m {
			if key == "comment" || key == "comments" || seen[key] {
				continue
			}
			seen[key] = true
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(columns, extra...)
}

func optionSubColumns(q survey.Question) []string {
	columns := make([]string, 0, len(q.Options)+2)
	for _, raw := range q.Options {
		columns = append(columns, analytics.OptionLabel(raw))
	}
	if q.HasOtherOption {
		columns = append(columns, "Other")
	}
	if q.HasNoneOption {
		columns = append(columns, q.NoneLabel())
	}
	return columns
}

func (w *ResponsesWriter) writeSheet(f *excelize.File, bold int, sheet string, sessions survey.SessionSet, layouts []questionLayout) {
	meta := []string{"Session ID", "Status", "First Activity", "Last Activity", "IP Address"}
	for i, header := range meta {
		f.SetCellValue(sheet, cell(i+1, 1), header)
		f.MergeCell(sheet, cell(i+1, 1), cell(i+1, 2))
	}

	// Two-row header: question text merged over its sub-columns, sub-column
	// names underneath.
	col := metaColumns + 1
	for _, layout := range layouts {
		width := len(layout.subColumns)
		f.SetCellValue(sheet, cell(col, 1), questionTitle(layout.question))
		if width > 1 {
			f.MergeCell(sheet, cell(col, 1), cell(col+width-1, 1))
		}
		for i, sub := range layout.subColumns {
			f.SetCellValue(sheet, cell(col+i, 2), sub)
		}
		col += width
	}
	f.SetCellStyle(sheet, cell(1, 1), cell(col-1, 2), bold)

	row := 3
	for _, id := range sortedSessionIDs(sessions) {
		session := sessions[id]

		status := "partial"
		if session.IsCompleted {
			status = "completed"
		}
		f.SetCellValue(sheet, cell(1, row), string(session.ID))
		f.SetCellValue(sheet, cell(2, row), status)
		if !session.FirstActivity.IsZero() {
			f.SetCellValue(sheet, cell(3, row), session.FirstActivity.Format("2006-01-02 15:04"))
		}
		if !session.LastActivity.IsZero() {
			f.SetCellValue(sheet, cell(4, row), session.LastActivity.Format("2006-01-02 15:04"))
		}
		f.SetCellValue(sheet, cell(5, row), session.IPAddress)

		col = metaColumns + 1
		for _, layout := range layouts {
			w.writeAnswer(f, sheet, col, row, layout, session)
			col += len(layout.subColumns)
		}
		row++
	}
}

func (w *ResponsesWriter) writeAnswer(f *excelize.File, sheet string, col, row int, layout questionLayout, session survey.Session) {
	answer := session.Answer(layout.question.ID)
	if answer == nil {
		return
	}

	if comment, ok := normalize.CommentText(answer); ok && layout.question.HasCommentBox {
		f.SetCellValue(sheet, cell(col+len(layout.subColumns)-1, row), comment)
	}

	switch {
	case layout.fanOut:
		w.writeFanOut(f, sheet, col, row, layout, answer)
	case layout.subColumns[0] == "":
		if value := formatAnswer(answer); value != "" {
			f.SetCellValue(sheet, cell(col, row), value)
		}
	default:
		w.writeSubfields(f, sheet, col, row, layout, answer)
	}
}

// writeFanOut marks one column per selected option. "Other:" selections
// carry their free text into the Other column.
func (w *ResponsesWriter) writeFanOut(f *excelize.File, sheet string, col, row int, layout questionLayout, answer survey.RawAnswer) {
	index := make(map[string]int, len(layout.subColumns))
	for i, sub := range layout.subColumns {
		index[strings.ToLower(sub)] = i
	}

	for _, selected := range normalize.SelectedValues(answer) {
		label, ok := selected.(string)
		if !ok {
			continue
		}
		if rest, isOther := strings.CutPrefix(label, "Other:"); isOther {
			if i, ok := index["other"]; ok {
				f.SetCellValue(sheet, cell(col+i, row), strings.TrimSpace(rest))
			}
			continue
		}
		if i, ok := index[strings.ToLower(strings.TrimSpace(label))]; ok {
			f.SetCellValue(sheet, cell(col+i, row), 1)
		}
	}
}

func (w *ResponsesWriter) writeSubfields(f *excelize.File, sheet string, col, row int, layout questionLayout, answer survey.RawAnswer) {
	m, ok := normalize.UnwrapAnswer(answer).(map[string]any)
	if !ok {
		if value := formatAnswer(answer); value != "" {
			f.SetCellValue(sheet, cell(col, row), value)
		}
		return
	}
	for i, sub := range layout.subColumns {
		if sub == "Comment" {
			continue
		}
		if value, ok := m[sub]; ok && !normalize.IsBlank(value) {
			f.SetCellValue(sheet, cell(col+i, row), formatAnswer(value))
		}
	}
}
