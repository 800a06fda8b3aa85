// Package mocks holds testify mocks of the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/purebundle/internal/domain"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// MockWorkflow is a testify mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

var _ domain.Workflow = (*MockWorkflow)(nil)

// NewMockWorkflow returns a MockWorkflow whose expectations are asserted
// when the test finishes.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	w := &MockWorkflow{}
	w.Mock.Test(t)

	t.Cleanup(func() { w.AssertExpectations(t) })

	return w
}

// Transform implements domain.Workflow.
func (w *MockWorkflow) Transform(ctx context.Context, args domain.TransformArgs) (*m.RunReport, error) {
	ret := w.Called(ctx, args)

	report, _ := ret.Get(0).(*m.RunReport)

	return report, ret.Error(1)
}

// Watch implements domain.Workflow.
func (w *MockWorkflow) Watch(ctx context.Context, args domain.TransformArgs) error {
	return w.Called(ctx, args).Error(0)
}

// View implements domain.Workflow.
func (w *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return w.Called(ctx, args).Error(0)
}
