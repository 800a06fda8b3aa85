// Package mocks holds testify mocks of the adapter interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/purebundle/internal/adapter"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// MockReportStore is a testify mock of adapter.ReportStore.
type MockReportStore struct {
	mock.Mock
}

var _ adapter.ReportStore = (*MockReportStore)(nil)

// SaveReport implements adapter.ReportStore.
func (s *MockReportStore) SaveReport(ctx context.Context, path m.Path, report *m.RunReport) error {
	args := s.Called(ctx, path, report)
	return args.Error(0)
}

// LoadReport implements adapter.ReportStore.
func (s *MockReportStore) LoadReport(ctx context.Context, path m.Path) (*m.RunReport, error) {
	args := s.Called(ctx, path)

	report, _ := args.Get(0).(*m.RunReport)

	return report, args.Error(1)
}
