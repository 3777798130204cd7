package ports

import (
	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
)

// AnalyticsRenderer turns computed analytics into a downloadable workbook.
type AnalyticsRenderer interface {
	// RenderAnalytics writes one sheet of per-question analytics blocks.
	RenderAnalytics(results domain.ResultSet, questions []survey.Question) ([]byte, error)
}

// SegmentedRenderer lays the same questions out once per segment, side by
// side, so segment distributions can be compared in a single sheet.
type SegmentedRenderer interface {
	RenderSegmented(segmented map[string]domain.ResultSet, segmentOrder []string, questions []survey.Question) ([]byte, error)
}

// ResponseRenderer dumps raw responses (partial, completed and merged) into
// a workbook for manual inspection.
type ResponseRenderer interface {
	RenderResponses(collection *survey.Collection, questions []survey.Question) ([]byte, error)
}
