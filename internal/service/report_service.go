package service

import (
	"context"
	"fmt"

	"catalog-analytics/internal/domain"
	"catalog-analytics/internal/repository"

	"golang.org/x/sync/errgroup"
)

// Summary is the dashboard view: ranked products plus global totals
type Summary struct {
	Analytics []*domain.ProductAnalytics
	Stats     *domain.Totals
}

// ReportService serves read-only aggregate queries
type ReportService struct {
	reader repository.AnalyticsReader
}

// NewReportService creates a new report service
func NewReportService(reader repository.AnalyticsReader) *ReportService {
	return &ReportService{reader: reader}
}

// Totals returns view, click and product totals across all aggregates
func (s *ReportService) Totals(ctx context.Context) (*domain.Totals, error) {
	totals, err := s.reader.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load totals: %w", domain.ErrStorageUnavailable, err)
	}
	return totals, nil
}

// Ranked returns every product with analytics, most clicked first
func (s *ReportService) Ranked(ctx context.Context) ([]*domain.ProductAnalytics, error) {
	ranked, err := s.reader.Ranked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load ranking: %w", domain.ErrStorageUnavailable, err)
	}
	return ranked, nil
}

// Summary loads the ranking and the totals concurrently. The two reads
// are separate snapshots.
func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	var summary Summary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ranked, err := s.Ranked(gctx)
		summary.Analytics = ranked
		return err
	})
	g.Go(func() error {
		totals, err := s.Totals(gctx)
		summary.Stats = totals
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}
