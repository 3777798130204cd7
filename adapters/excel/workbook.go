// Package excel renders computed analytics and raw responses into xlsx
// workbooks with excelize. Writers return workbook bytes; they never touch
// disk, the HTTP layer streams them.
package excel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gosurvey/domain/survey"
	"gosurvey/internal/normalize"

	"github.com/xuri/excelize/v2"
)

// cell converts 1-based coordinates to an A1 reference. Coordinates inside
// the writers are always valid, so conversion errors cannot happen.
func cell(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col, row)
	return ref
}

// boldStyle creates the header style used across all writers.
func boldStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	return style
}

// questionTitle renders the block heading for one question.
func questionTitle(q survey.Question) string {
	return fmt.Sprintf("Q%d. %s", q.Order+1, q.QuestionText)
}

// formatAnswer renders a raw answer for the response dump. Lists are joined,
// maps are compacted to JSON, everything else prints as-is.
func formatAnswer(answer survey.RawAnswer) string {
	switch t := normalize.UnwrapAnswer(answer).(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		encoded, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// sortedSessionIDs fixes row order in the response dump.
func sortedSessionIDs(sessions survey.SessionSet) []survey.SessionID {
	ids := make([]survey.SessionID, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
