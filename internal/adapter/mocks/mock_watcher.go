package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/purebundle/internal/adapter"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// MockWatcher is a testify mock of adapter.Watcher.
type MockWatcher struct {
	mock.Mock
}

var _ adapter.Watcher = (*MockWatcher)(nil)

// Watch implements adapter.Watcher.
func (w *MockWatcher) Watch(ctx context.Context, roots []m.Path) (<-chan []m.Path, <-chan error) {
	args := w.Called(ctx, roots)

	batches, _ := args.Get(0).(<-chan []m.Path)
	errs, _ := args.Get(1).(<-chan error)

	return batches, errs
}
