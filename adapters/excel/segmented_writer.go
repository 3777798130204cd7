package excel

import (
	"fmt"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/errors"
	"gosurvey/ports"

	"github.com/xuri/excelize/v2"
)

// SegmentedWriter lays segment analytics out side by side: two columns per
// segment, one shared label column. Rows are the union of options, grid
// cells or subfields across segments so every segment lines up on the same
// row even when a label only occurs in one of them.
type SegmentedWriter struct {
	sheetName string
}

// NewSegmentedWriter creates a new segmented analytics workbook writer.
func NewSegmentedWriter(sheetName string) ports.SegmentedRenderer {
	if sheetName == "" {
		sheetName = "Segmented Analytics"
	}
	return &SegmentedWriter{sheetName: sheetName}
}

const columnsPerSegment = 2

// RenderSegmented writes every question block with one column pair per
// segment, in the supplied segment order.
func (w *SegmentedWriter) RenderSegmented(
	segmented map[string]domain.ResultSet,
	segmentOrder []string,
	questions []survey.Question,
) ([]byte, error) {
	if len(segmentOrder) == 0 {
		return nil, errors.RenderError("no segments to render", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheetName); err != nil {
		return nil, errors.RenderError("failed to name segmented sheet", err)
	}
	bold := boldStyle(f)
	sheet := w.sheetName

	// Segment banner: each segment owns a merged two-column header.
	for i, segment := range segmentOrder {
		start := segmentColumn(i)
		f.SetCellValue(sheet, cell(start, 1), segment)
		f.MergeCell(sheet, cell(start, 1), cell(start+columnsPerSegment-1, 1))
		f.SetCellStyle(sheet, cell(start, 1), cell(start, 1), bold)
	}

	row := 3
	for _, question := range questions {
		row = w.writeQuestion(f, bold, row, question, segmented, segmentOrder)
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.RenderError("failed to serialize segmented workbook", err)
	}
	return buf.Bytes(), nil
}

// segmentColumn is the first of a segment's two columns. Column 1 holds the
// shared labels.
func segmentColumn(i int) int {
	return 2 + i*columnsPerSegment
}

func (w *SegmentedWriter) writeQuestion(
	f *excelize.File,
	bold, row int,
	question survey.Question,
	segmented map[string]domain.ResultSet,
	segmentOrder []string,
) int {
	sheet := w.sheetName

	f.SetCellValue(sheet, cell(1, row), questionTitle(question))
	f.SetCellStyle(sheet, cell(1, row), cell(1, row), bold)
	row++

	f.SetCellValue(sheet, cell(1, row), "Answered / Skipped")
	for i, segment := range segmentOrder {
		result := segmented[segment][question.ID]
		f.SetCellValue(sheet, cell(segmentColumn(i), row), result.AnsweredCount)
		f.SetCellValue(sheet, cell(segmentColumn(i)+1, row), result.SkippedCount)
	}
	row++

	kind := w.questionKind(question, segmented, segmentOrder)
	switch kind {
	case domain.KindChoice:
		row = w.writeChoice(f, bold, row, question, segmented, segmentOrder)
	case domain.KindGrid:
		row = w.writeGrid(f, row, question, segmented, segmentOrder)
	case domain.KindNumeric:
		row = w.writeNumeric(f, row, question, segmented, segmentOrder)
	case domain.KindFormFieldsNumeric:
		row = w.writeFormFields(f, row, question, segmented, segmentOrder)
	default:
		result := segmented[segmentOrder[0]][question.ID]
		f.SetCellValue(sheet, cell(1, row), result.Message)
		row++
	}
	return row
}

// questionKind picks the result variant from the first segment that has one.
// All segments share the question catalog, so kinds agree across segments.
func (w *SegmentedWriter) questionKind(
	question survey.Question,
	segmented map[string]domain.ResultSet,
	segmentOrder []string,
) domain.Kind {
	for _, segment := range segmentOrder {
		if result, ok := segmented[segment][question.ID]; ok {
			return result.Kind
		}
	}
	return domain.KindOther
}

func (w *SegmentedWriter) writeChoice(
	f *excelize.File,
	bold, row int,
	question survey.Question,
	segmented map[string]domain.ResultSet,
	segmentOrder []string,
) int {
	sheet := w.sheetName

	f.SetCellValue(sheet, cell(1, row), "Option")
	for i := range segmentOrder {
		f.SetCellValue(sheet, cell(segmentColumn(i), row), "Count")
		f.SetCellValue(sheet, cell(segmentColumn(i)+1, row), "%")
	}
	f.SetCellStyle(sheet, cell(1, row), cell(1, row), bold)
	row++

	// Union of option labels, ordered by first appearance across segments.
	var labels []string
	seen := map[string]bool{}
	for _, segment := range segmentOrder {
		for _, option := range segmented[segment][question.ID].Options {
			if !seen[option.Option] {
				seen[option.Option] = true
				labels = append(labels, option.Option)
			}
		}
	}

	for _, label := range labels {
		f.SetCellValue(sheet, cell(1, row), label)
		for i, segment := range segmentOrder {
			for _, option := range segmented[segment][question.ID].Options {
				if option.Option != label {
					continue
				}
				f.SetCellValue(sheet, cell(segmentColumn(i), row), option.Count)
				f.SetCellValue(sheet, cell(segmentColumn(i)+1, row), fmt.Sprintf("%.2f%%", option.Percentage))
				break
			}
		}
		row++
	}

	f.SetCellValue(sheet, cell(1, row), "Total responses")
	for i, segment := range segmentOrder {
		f.SetCellValue(sheet, cell(segmentColumn(i), row), segmented[segment][question.ID].TotalResponses)
	}
	return row + 1
}

func (w *SegmentedWriter) writeGrid(
	f *excelize.File,
	row int,
	question survey.Question,
	segmented map[string]domain.ResultSet,
	segmentOrder []string,
) int {
	sheet := w.sheetName

	for _, rowLabel := range question.Rows {
		f.SetCellValue(sheet, cell(1, row), rowLabel)
		for i, segment := range segmentOrder {
			gridRow := segmented[segment][question.ID].Rows[rowLabel]
			f.SetCellValue(sheet, cell(segmentColumn(i), row), gridRow.TotalResponses)
		}
		row++

		for colIdx, column := range question.Columns {
			f.SetCellValue(sheet, cell(1, row), "  "+column)
			for i, segment := range segmentOrder {
				gridRow := segmented[segment][question.ID].Rows[rowLabel]
				if colIdx >= len(gridRow.Columns) {
					continue
				}
				cc := gridRow.Columns[colIdx]
				f.SetCellValue(sheet, cell(segmentColumn(i), row), cc.Count)
				f.SetCellValue(sheet, cell(segmentColumn(i)+1, row), fmt.Sprintf("%.2f%%", cc.Percentage))
			}
			row++
		}
	}
	return row
}

func (w *SegmentedWriter) writeNumeric(
	f *excelize.File,
	row int,
	question survey.Question,
	segmented map[string]domain.ResultSet,
	segmentOrder []string,
) int {
	sheet := w.sheetName

	for _, stat := range numericStatRows {
		f.SetCellValue(sheet, cell(1, row), stat.label)
		for i, segment := range segmentOrder {
			numeric := segmented[segment][question.ID].Numeric
			if numeric == nil {
				continue
			}
			f.SetCellValue(sheet, cell(segmentColumn(i), row), stat.value(*numeric))
		}
		row++
	}
	return row
}

func (w *SegmentedWriter) writeFormFields(
	f *excelize.File,
	row int,
	question survey.Question,
	segmented map[string]domain.ResultSet,
	segmentOrder []string,
) int {
	sheet := w.sheetName

	f.SetCellValue(sheet, cell(1, row), "Base count")
	for i, segment := range segmentOrder {
		f.SetCellValue(sheet, cell(segmentColumn(i), row), segmented[segment][question.ID].BaseCount)
	}
	row++

	for _, name := range question.NumericSubfields() {
		for _, stat := range numericStatRows {
			f.SetCellValue(sheet, cell(1, row), fmt.Sprintf("%s / %s", name, stat.label))
			for i, segment := range segmentOrder {
				stats, ok := segmented[segment][question.ID].Subfields[name]
				if !ok {
					continue
				}
				f.SetCellValue(sheet, cell(segmentColumn(i), row), stat.value(stats))
			}
			row++
		}
	}
	return row
}
