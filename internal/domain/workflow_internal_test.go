package domain

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	controllermocks "gooze.dev/pkg/purebundle/internal/controller/mocks"
	m "gooze.dev/pkg/purebundle/internal/model"
)

type failingSink struct {
	err   error
	calls int
}

func (s *failingSink) Append(m.FileReport) error {
	s.calls++
	return s.err
}

func TestWorkflow_CollectDrainsAfterSinkError(t *testing.T) {
	ctx := context.Background()

	emitter, err := NewEmitter(nil, ModeCheck, "", io.Discard)
	require.NoError(t, err)

	ui := new(controllermocks.MockUI)
	ui.On("DisplayResult", mock.Anything, mock.Anything).Once()

	w := &workflow{UI: ui, Emitter: emitter}

	results := make(chan m.Result)
	sent := make(chan int, 1)

	go func() {
		defer close(results)

		count := 0
		for range 5 {
			results <- m.Result{Status: m.Unchanged}
			count++
		}

		sent <- count
	}()

	diskFull := errors.New("disk full")
	sink := &failingSink{err: diskFull}

	cancelled := false
	err = w.collect(ctx, results, sink, func() { cancelled = true })

	require.ErrorIs(t, err, diskFull)
	assert.True(t, cancelled)
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, 5, <-sent)
	ui.AssertExpectations(t)
}

func TestWorkflow_CollectRecordsEveryResult(t *testing.T) {
	emitter, err := NewEmitter(nil, ModeCheck, "", io.Discard)
	require.NoError(t, err)

	ui := new(controllermocks.MockUI)
	ui.On("DisplayResult", mock.Anything, mock.Anything).Times(3)

	w := &workflow{UI: ui, Emitter: emitter}

	results := make(chan m.Result, 3)
	for range 3 {
		results <- m.Result{Status: m.Changed}
	}
	close(results)

	sink := &failingSink{}

	require.NoError(t, w.collect(context.Background(), results, sink, func() { t.Fatal("unexpected cancel") }))
	assert.Equal(t, 3, sink.calls)
	ui.AssertExpectations(t)
}
