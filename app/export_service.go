// Package app orchestrates collection, filtering, segmentation, analytics
// and rendering into the export operations the HTTP layer exposes.
package app

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	domain "gosurvey/domain/analytics"
	"gosurvey/domain/survey"
	"gosurvey/internal/analytics"
	"gosurvey/internal/errors"
	"gosurvey/internal/filter"
	"gosurvey/internal/segment"
	"gosurvey/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ExportService runs the full export pipeline for one survey.
type ExportService struct {
	collector  ports.ResponseCollector
	calculator *analytics.Calculator
	filters    *filter.Engine
	segments   *segment.Engine

	analyticsRenderer ports.AnalyticsRenderer
	segmentedRenderer ports.SegmentedRenderer
	responseRenderer  ports.ResponseRenderer
}

// NewExportService creates an export service over the given collaborators.
func NewExportService(
	collector ports.ResponseCollector,
	analyticsRenderer ports.AnalyticsRenderer,
	segmentedRenderer ports.SegmentedRenderer,
	responseRenderer ports.ResponseRenderer,
) *ExportService {
	return &ExportService{
		collector:         collector,
		calculator:        analytics.NewCalculator(),
		filters:           filter.NewEngine(),
		segments:          segment.NewEngine(),
		analyticsRenderer: analyticsRenderer,
		segmentedRenderer: segmentedRenderer,
		responseRenderer:  responseRenderer,
	}
}

// AnalyticsExportRequest carries the optional filter and segmentation specs
// for an analytics export.
type AnalyticsExportRequest struct {
	Filter       *domain.FilterRequest      `json:"filter,omitempty"`
	Segmentation *domain.SegmentationConfig `json:"segmentation,omitempty"`
}

// AnalyticsExport is the computed analytics plus the rendered workbook.
type AnalyticsExport struct {
	Workbook []byte
	Results  map[string]domain.ResultSet // keyed by segment, "All responses" only when unsegmented
}

// ExportAnalytics collects the survey's sessions, applies the optional
// filter and segmentation, computes analytics per segment and renders the
// workbook. Segment computations are independent reads over the same
// immutable data, so they fan out concurrently.
func (s *ExportService) ExportAnalytics(ctx context.Context, surveyID uuid.UUID, req AnalyticsExportRequest) (*AnalyticsExport, error) {
	started := time.Now()

	questions, err := s.collector.ListQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	collection, err := s.collector.Collect(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	sessions := collection.All
	if req.Filter != nil {
		sessions, err = s.filters.Apply(sessions, *req.Filter, questions)
		if err != nil {
			return nil, err
		}
		questions = s.filters.PruneQuestions(questions, *req.Filter)
	}

	assignment := domain.SegmentAssignment{}
	if req.Segmentation != nil {
		assignment, err = s.segments.Apply(sessions, *req.Segmentation, questions)
		if err != nil {
			return nil, err
		}
	} else {
		all := make(map[survey.SessionID]struct{}, len(sessions))
		for id := range sessions {
			all[id] = struct{}{}
		}
		assignment[domain.AllResponsesSegment] = all
	}

	segmentOrder := orderedSegments(assignment)
	results := make(map[string]domain.ResultSet, len(assignment))

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	for _, name := range segmentOrder {
		subset := sessions.Subset(assignment[name])
		segmentName := name
		g.Go(func() error {
			computed := s.calculator.Calculate(subset, questions, len(subset), collection.Metadata)
			mu.Lock()
			results[segmentName] = computed
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var workbook []byte
	if req.Segmentation != nil {
		workbook, err = s.segmentedRenderer.RenderSegmented(results, segmentOrder, questions)
	} else {
		workbook, err = s.analyticsRenderer.RenderAnalytics(results[domain.AllResponsesSegment], questions)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to render analytics workbook")
	}

	log.Printf("[Export] survey %s: %d segments, %d questions, %d sessions in %s",
		surveyID, len(segmentOrder), len(questions), len(sessions), time.Since(started).Round(time.Millisecond))

	return &AnalyticsExport{Workbook: workbook, Results: results}, nil
}

// ExportResponses renders the raw responses workbook.
func (s *ExportService) ExportResponses(ctx context.Context, surveyID uuid.UUID) ([]byte, error) {
	questions, err := s.collector.ListQuestions(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	collection, err := s.collector.Collect(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	workbook, err := s.responseRenderer.RenderResponses(collection, questions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render responses workbook")
	}
	return workbook, nil
}

// orderedSegments puts "All responses" first, "Unknown" last, and the named
// segments alphabetically between them so workbook layout is stable.
func orderedSegments(assignment domain.SegmentAssignment) []string {
	var named []string
	hasAll, hasUnknown := false, false
	for name := range assignment {
		switch name {
		case domain.AllResponsesSegment:
			hasAll = true
		case domain.UnknownSegment:
			hasUnknown = true
		default:
			named = append(named, name)
		}
	}
	sort.Strings(named)

	ordered := make([]string, 0, len(assignment))
	if hasAll {
		ordered = append(ordered, domain.AllResponsesSegment)
	}
	ordered = append(ordered, named...)
	if hasUnknown {
		ordered = append(ordered, domain.UnknownSegment)
	}
	return ordered
}
