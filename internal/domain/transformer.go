package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/purebundle/internal/adapter"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// Transformer runs a pipeline over source files.
type Transformer interface {
	// TransformSource reads, rewrites and prints one source. Per-file failures
	// are reported in the result, never as an error.
	TransformSource(ctx context.Context, source m.Source) m.Result
	// StreamResults transforms sources on up to threads workers. The error
	// channel only carries cancellation.
	StreamResults(ctx context.Context, sources <-chan m.Source, threads int) (<-chan m.Result, <-chan error)
}

type transformer struct {
	adapter.SourceFSAdapter
	adapter.SyntaxAdapter
	pipeline *Pipeline
}

// NewTransformer creates a Transformer for the given pipeline.
func NewTransformer(fsAdapter adapter.SourceFSAdapter, syntax adapter.SyntaxAdapter, pipeline *Pipeline) Transformer {
	return &transformer{
		SourceFSAdapter: fsAdapter,
		SyntaxAdapter:   syntax,
		pipeline:        pipeline,
	}
}

func (t *transformer) TransformSource(ctx context.Context, source m.Source) m.Result {
	result := m.Result{Source: source}

	if source.Origin == nil || source.Origin.FullPath == "" {
		result.Status = m.Failed
		result.Err = errors.New("missing source origin")

		return result
	}

	content, err := t.ReadFile(ctx, source.Origin.FullPath)
	if err != nil {
		return failed(result, fmt.Errorf("read %s: %w", source.Origin.FullPath, err))
	}

	mod, err := t.Parse(ctx, source.Dialect, content)
	if err != nil {
		return failed(result, fmt.Errorf("parse %s: %w", source.Origin.FullPath, err))
	}

	notes, stats := t.pipeline.Transform(mod)

	result.Output = t.Print(mod, notes)
	result.Stats = stats

	if bytes.Equal(result.Output, content) {
		result.Status = m.Unchanged
	} else {
		result.Status = m.Changed
	}

	slog.Debug("transformed source", "path", source.Origin.FullPath, "status", result.Status, "rewrites", stats.Total())

	return result
}

func failed(result m.Result, err error) m.Result {
	slog.Warn("failed to transform source", "path", result.Source.Origin.FullPath, "error", err)

	result.Status = m.Failed
	result.Err = err

	return result
}

func (t *transformer) StreamResults(ctx context.Context, sources <-chan m.Source, threads int) (<-chan m.Result, <-chan error) {
	if threads <= 0 {
		threads = 1
	}

	results := make(chan m.Result, threads)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(results)

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(threads)

	loop:
		for {
			select {
			case <-groupCtx.Done():
				break loop
			case source, ok := <-sources:
				if !ok {
					break loop
				}

				group.Go(func() error {
					result := t.TransformSource(groupCtx, source)

					select {
					case <-groupCtx.Done():
						return groupCtx.Err()
					case results <- result:
						return nil
					}
				})
			}
		}

		if err := group.Wait(); err != nil {
			errCh <- err
			return
		}

		if err := ctx.Err(); err != nil {
			errCh <- err
		}
	}()

	return results, errCh
}
