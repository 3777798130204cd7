package analytics

import (
	"fmt"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/normalize"
)

const gridStructureMissingMessage = "Grid structure not defined"

// gridAnalytics tallies per-row column distributions. Every row is an
// independent distribution: a session joins a row's denominator only when it
// has at least one recognized-column selection for that row, and percentages
// use that row's own denominator.
func (c *Calculator) gridAnalytics(
	question survey.Question,
	sessions survey.SessionSet,
	order []survey.SessionID,
	base domain.Result,
) domain.Result {
	if len(question.Rows) == 0 || len(question.Columns) == 0 {
		base.Kind = domain.KindOther
		base.Message = gridStructureMissingMessage
		return base
	}

	columnIndex := make(map[string]int, len(question.Columns))
	for i, col := range question.Columns {
		columnIndex[col] = i
	}
	isMulti := question.SecondaryType == survey.SecondaryGridMulti

	rows := make(map[string]domain.GridRow, len(question.Rows))

	for _, row := range question.Rows {
		counts := make([]int, len(question.Columns))
		totalRowResponses := 0

		for _, sid := range order {
			answer := normalize.UnwrapAnswer(sessions[sid].Answer(question.ID))
			m, ok := answer.(map[string]any)
			if !ok {
				continue
			}
			rowAnswer, ok := m[row]
			if !ok || rowAnswer == nil {
				continue
			}

			var selections []any
			if isMulti {
				if list, ok := rowAnswer.([]any); ok {
					selections = list
				}
			} else if !normalize.IsBlank(rowAnswer) {
				selections = []any{rowAnswer}
			}

			// Unrecognized columns are dropped; a session with only
			// unknown selections does not join the denominator.
			contributed := false
			for _, sel := range selections {
				name := columnName(sel)
				idx, known := columnIndex[name]
				if !known {
					continue
				}
				counts[idx]++
				contributed = true
			}
			if contributed {
				totalRowResponses++
			}
		}

		columnStats := make([]domain.ColumnCount, len(question.Columns))
		for i, col := range question.Columns {
			columnStats[i] = domain.ColumnCount{
				Column:     col,
				Count:      counts[i],
				Percentage: percentage(counts[i], totalRowResponses),
			}
		}
		rows[row] = domain.GridRow{
			TotalResponses: totalRowResponses,
			Columns:        columnStats,
		}
	}

	base.Kind = domain.KindGrid
	base.QuestionType = question.SecondaryType
	base.RowOrder = question.Rows
	base.Rows = rows
	return base
}

func columnName(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
