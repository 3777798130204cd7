package excel

import (
	"fmt"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/errors"
	"gosurvey/ports"

	"github.com/xuri/excelize/v2"
)

// AnalyticsWriter renders per-question analytics blocks onto one sheet.
type AnalyticsWriter struct {
	sheetName    string
	commentLimit int
}

// NewAnalyticsWriter creates a new analytics workbook writer.
func NewAnalyticsWriter(sheetName string, commentLimit int) ports.AnalyticsRenderer {
	if sheetName == "" {
		sheetName = "Analytics"
	}
	return &AnalyticsWriter{sheetName: sheetName, commentLimit: commentLimit}
}

// RenderAnalytics writes one block per question, in catalog order, and
// returns the workbook bytes.
func (w *AnalyticsWriter) RenderAnalytics(results domain.ResultSet, questions []survey.Question) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheetName); err != nil {
		return nil, errors.RenderError("failed to name analytics sheet", err)
	}
	bold := boldStyle(f)

	row := 1
	for _, question := range questions {
		result, ok := results[question.ID]
		if !ok {
			continue
		}
		row = w.writeQuestion(f, bold, row, question, result)
		row++ // blank row between blocks
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.RenderError("failed to serialize analytics workbook", err)
	}
	return buf.Bytes(), nil
}

func (w *AnalyticsWriter) writeQuestion(f *excelize.File, bold, row int, question survey.Question, result domain.Result) int {
	sheet := w.sheetName

	f.SetCellValue(sheet, cell(1, row), questionTitle(question))
	f.SetCellStyle(sheet, cell(1, row), cell(1, row), bold)
	row++

	f.SetCellValue(sheet, cell(1, row), "Answered")
	f.SetCellValue(sheet, cell(2, row), result.AnsweredCount)
	f.SetCellValue(sheet, cell(3, row), "Skipped")
	f.SetCellValue(sheet, cell(4, row), result.SkippedCount)
	row++

	switch result.Kind {
	case domain.KindChoice:
		row = w.writeChoice(f, bold, row, result)
	case domain.KindGrid:
		row = w.writeGrid(f, bold, row, result)
	case domain.KindNumeric:
		row = w.writeNumeric(f, row, result)
	case domain.KindFormFieldsNumeric:
		row = w.writeFormFields(f, bold, row, result)
	default:
		f.SetCellValue(sheet, cell(1, row), result.Message)
		row++
	}

	if len(result.Comments) > 0 {
		row = w.writeComments(f, bold, row, result)
	}
	return row
}

func (w *AnalyticsWriter) writeChoice(f *excelize.File, bold, row int, result domain.Result) int {
	sheet := w.sheetName

	f.SetCellValue(sheet, cell(1, row), "Option")
	f.SetCellValue(sheet, cell(2, row), "Count")
	f.SetCellValue(sheet, cell(3, row), "Percentage")
	f.SetCellStyle(sheet, cell(1, row), cell(3, row), bold)
	row++

	for _, option := range result.Options {
		f.SetCellValue(sheet, cell(1, row), option.Option)
		f.SetCellValue(sheet, cell(2, row), option.Count)
		f.SetCellValue(sheet, cell(3, row), fmt.Sprintf("%.2f%%", option.Percentage))
		row++
	}

	f.SetCellValue(sheet, cell(1, row), "Total responses")
	f.SetCellValue(sheet, cell(2, row), result.TotalResponses)
	return row + 1
}

func (w *AnalyticsWriter) writeGrid(f *excelize.File, bold, row int, result domain.Result) int {
	sheet := w.sheetName

	for _, rowLabel := range result.RowOrder {
		gridRow := result.Rows[rowLabel]

		f.SetCellValue(sheet, cell(1, row), rowLabel)
		f.SetCellStyle(sheet, cell(1, row), cell(1, row), bold)
		f.SetCellValue(sheet, cell(2, row), fmt.Sprintf("%d responses", gridRow.TotalResponses))
		row++

		for _, column := range gridRow.Columns {
			f.SetCellValue(sheet, cell(2, row), column.Column)
			f.SetCellValue(sheet, cell(3, row), column.Count)
			f.SetCellValue(sheet, cell(4, row), fmt.Sprintf("%.2f%%", column.Percentage))
			row++
		}
	}
	return row
}

var numericStatRows = []struct {
	label string
	value func(domain.NumericStats) any
}{
	{"Count", func(s domain.NumericStats) any { return s.Count }},
	{"Min", func(s domain.NumericStats) any { return s.Min }},
	{"Q1", func(s domain.NumericStats) any { return s.Q1 }},
	{"Median", func(s domain.NumericStats) any { return s.Median }},
	{"Q3", func(s domain.NumericStats) any { return s.Q3 }},
	{"Max", func(s domain.NumericStats) any { return s.Max }},
	{"Average", func(s domain.NumericStats) any { return s.Average }},
	{"Sum", func(s domain.NumericStats) any { return s.Sum }},
	{"Std Dev", func(s domain.NumericStats) any { return s.StdDev }},
	{"Skewness", func(s domain.NumericStats) any { return s.Skewness }},
}

func (w *AnalyticsWriter) writeNumeric(f *excelize.File, row int, result domain.Result) int {
	sheet := w.sheetName

	if result.Numeric == nil || result.Numeric.Count == 0 {
		f.SetCellValue(sheet, cell(1, row), result.Message)
		return row + 1
	}
	for _, stat := range numericStatRows {
		f.SetCellValue(sheet, cell(1, row), stat.label)
		f.SetCellValue(sheet, cell(2, row), stat.value(*result.Numeric))
		row++
	}
	return row
}

func (w *AnalyticsWriter) writeFormFields(f *excelize.File, bold, row int, result domain.Result) int {
	sheet := w.sheetName

	f.SetCellValue(sheet, cell(1, row), "Base count")
	f.SetCellValue(sheet, cell(2, row), result.BaseCount)
	row++

	f.SetCellValue(sheet, cell(1, row), "Subfield")
	for i, stat := range numericStatRows {
		f.SetCellValue(sheet, cell(2+i, row), stat.label)
	}
	f.SetCellStyle(sheet, cell(1, row), cell(1+len(numericStatRows), row), bold)
	row++

	for _, name := range result.SubfieldOrder {
		stats := result.Subfields[name]
		f.SetCellValue(sheet, cell(1, row), name)
		for i, stat := range numericStatRows {
			f.SetCellValue(sheet, cell(2+i, row), stat.value(stats))
		}
		row++
	}
	return row
}

func (w *AnalyticsWriter) writeComments(f *excelize.File, bold, row int, result domain.Result) int {
	sheet := w.sheetName

	comments := result.Comments
	if w.commentLimit > 0 && len(comments) > w.commentLimit {
		comments = comments[:w.commentLimit]
	}

	f.SetCellValue(sheet, cell(1, row), fmt.Sprintf("Comments (%d)", len(result.Comments)))
	f.SetCellStyle(sheet, cell(1, row), cell(1, row), bold)
	row++

	for _, comment := range comments {
		f.SetCellValue(sheet, cell(1, row), comment.ResponseID)
		if !comment.SubmittedAt.IsZero() {
			f.SetCellValue(sheet, cell(2, row), comment.SubmittedAt.Format("2006-01-02 15:04"))
		}
		f.SetCellValue(sheet, cell(3, row), comment.Comment)
		row++
	}
	return row
}
