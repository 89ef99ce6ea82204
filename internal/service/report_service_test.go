package service

import (
	"context"
	"errors"
	"testing"

	"catalog-analytics/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsReader is a mock implementation of AnalyticsReader
type MockAnalyticsReader struct {
	mock.Mock
}

func (m *MockAnalyticsReader) Totals(ctx context.Context) (*domain.Totals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Totals), args.Error(1)
}

func (m *MockAnalyticsReader) Ranked(ctx context.Context) ([]*domain.ProductAnalytics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProductAnalytics), args.Error(1)
}

func TestReportService_Totals(t *testing.T) {
	reader := new(MockAnalyticsReader)
	svc := NewReportService(reader)

	want := &domain.Totals{TotalViews: 10, TotalClicks: 4, TotalProducts: 3}
	reader.On("Totals", mock.Anything).Return(want, nil)

	got, err := svc.Totals(context.Background())

	require.NoError(t, err)
	assert.Equal(t, want, got)
	reader.AssertExpectations(t)
}

func TestReportService_Ranked(t *testing.T) {
	reader := new(MockAnalyticsReader)
	svc := NewReportService(reader)

	ranked := []*domain.ProductAnalytics{
		{ProductID: 2, ClickCount: 5, ViewCount: 9},
		{ProductID: 1, ClickCount: 5, ViewCount: 3},
	}
	reader.On("Ranked", mock.Anything).Return(ranked, nil)

	got, err := svc.Ranked(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ranked, got)
}

func TestReportService_Summary(t *testing.T) {
	reader := new(MockAnalyticsReader)
	svc := NewReportService(reader)

	totals := &domain.Totals{TotalViews: 12, TotalClicks: 5, TotalProducts: 2}
	ranked := []*domain.ProductAnalytics{{ProductID: 2, ClickCount: 5, ViewCount: 9}}
	reader.On("Totals", mock.Anything).Return(totals, nil)
	reader.On("Ranked", mock.Anything).Return(ranked, nil)

	summary, err := svc.Summary(context.Background())

	require.NoError(t, err)
	assert.Equal(t, totals, summary.Stats)
	assert.Equal(t, ranked, summary.Analytics)
	reader.AssertExpectations(t)
}

func TestReportService_StorageErrors(t *testing.T) {
	dbErr := errors.New("connection refused")

	t.Run("totals", func(t *testing.T) {
		reader := new(MockAnalyticsReader)
		reader.On("Totals", mock.Anything).Return(nil, dbErr)

		_, err := NewReportService(reader).Totals(context.Background())

		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("summary fails if either read fails", func(t *testing.T) {
		reader := new(MockAnalyticsReader)
		reader.On("Totals", mock.Anything).Return(&domain.Totals{}, nil).Maybe()
		reader.On("Ranked", mock.Anything).Return(nil, dbErr)

		summary, err := NewReportService(reader).Summary(context.Background())

		assert.Nil(t, summary)
		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})
}
