// Package mocks holds testify mocks of the controller interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/purebundle/internal/controller"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// MockUI is a testify mock of controller.UI.
type MockUI struct {
	mock.Mock
}

var _ controller.UI = (*MockUI)(nil)

// Start implements controller.UI.
func (u *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	args := u.Called(ctx, options)
	return args.Error(0)
}

// Close implements controller.UI.
func (u *MockUI) Close(ctx context.Context) {
	u.Called(ctx)
}

// Wait implements controller.UI.
func (u *MockUI) Wait(ctx context.Context) {
	u.Called(ctx)
}

// DisplayRunInfo implements controller.UI.
func (u *MockUI) DisplayRunInfo(ctx context.Context, info controller.RunInfo) {
	u.Called(ctx, info)
}

// DisplayResult implements controller.UI.
func (u *MockUI) DisplayResult(ctx context.Context, result m.Result) {
	u.Called(ctx, result)
}

// DisplaySummary implements controller.UI.
func (u *MockUI) DisplaySummary(ctx context.Context, report *m.RunReport) error {
	args := u.Called(ctx, report)
	return args.Error(0)
}
