package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"gooze.dev/pkg/purebundle/internal/adapter"
	"gooze.dev/pkg/purebundle/internal/controller"
	m "gooze.dev/pkg/purebundle/internal/model"
	"gooze.dev/pkg/purebundle/pkg"
)

var (
	// ErrChangesPending is returned by a failing check: some files are not
	// in their transformed form.
	ErrChangesPending = errors.New("files would be rewritten")
	// ErrTransformFailed is returned when at least one file could not be
	// transformed.
	ErrTransformFailed = errors.New("files failed to transform")
)

// TransformArgs contains the arguments for one transform run.
type TransformArgs struct {
	Paths    []m.Path
	Exclude  []string
	Reports  m.Path
	UseCache bool
	Threads  int
	// FailOnChange turns pending rewrites into ErrChangesPending.
	FailOnChange bool
	// SpillDir holds the temporary per-file records of a run.
	SpillDir string
}

// ViewArgs contains the arguments for displaying a stored report.
type ViewArgs struct {
	Reports m.Path
}

// Workflow drives the pipeline over a file tree.
type Workflow interface {
	Transform(ctx context.Context, args TransformArgs) (*m.RunReport, error)
	Watch(ctx context.Context, args TransformArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	controller.UI
	Transformer
	Emitter

	watcher  adapter.Watcher
	pipeline *Pipeline
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	watcher adapter.Watcher,
	ui controller.UI,
	pipeline *Pipeline,
	transformer Transformer,
	emitter Emitter,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		Transformer:     transformer,
		Emitter:         emitter,
		watcher:         watcher,
		pipeline:        pipeline,
	}
}

func (w *workflow) runInfo(threads int) controller.RunInfo {
	return controller.RunInfo{Pipeline: w.pipeline.String(), Mode: string(w.Mode()), Threads: threads}
}

func (w *workflow) Transform(ctx context.Context, args TransformArgs) (*m.RunReport, error) {
	if err := w.Start(ctx, controller.WithTransformMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return nil, err
	}

	w.DisplayRunInfo(ctx, w.runInfo(args.Threads))

	report, err := w.run(ctx, args, w.previous(ctx, args), nil)
	if err != nil {
		w.Close(ctx)
		return nil, err
	}

	w.Wait(ctx)
	w.Close(ctx)

	return report, outcome(report, args.FailOnChange)
}

// previous loads the cached report of the last run, if caching applies.
func (w *workflow) previous(ctx context.Context, args TransformArgs) *m.RunReport {
	if !args.UseCache || args.Reports == "" {
		return nil
	}

	report, err := w.LoadReport(ctx, args.Reports)
	if err != nil {
		if !errors.Is(err, adapter.ErrReportNotFound) {
			slog.Warn("Ignoring unreadable report", "path", args.Reports, "error", err)
		}

		return nil
	}

	return report
}

// run performs one pass over the tree. Sources outside only are carried
// over from previous when only is non-nil.
func (w *workflow) run(ctx context.Context, args TransformArgs, previous *m.RunReport, only map[m.Path]struct{}) (*m.RunReport, error) {
	startedAt := time.Now().UTC()

	spill, err := pkg.NewFileSpill[m.FileReport](args.SpillDir)
	if err != nil {
		return nil, fmt.Errorf("create spill: %w", err)
	}

	defer func() {
		if err := spill.Remove(); err != nil {
			slog.Warn("Failed to remove spill", "path", spill.Path(), "error", err)
		}
	}()

	threads := max(args.Threads, 1)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sources, sourcesErr := w.GetChannel(streamCtx, args.Paths, threads, args.Exclude...)
	pending, carried := w.filterCached(streamCtx, sources, previous, only)
	results, resultsErr := w.StreamResults(streamCtx, pending, threads)

	if err := w.collect(ctx, results, spill, cancel); err != nil {
		return nil, err
	}

	if err := <-mergeErrorChannels(sourcesErr, resultsErr); err != nil {
		return nil, err
	}

	for _, entry := range carried.entries {
		if err := spill.Append(entry); err != nil {
			return nil, err
		}
	}

	report := &m.RunReport{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Pipeline:    w.pipeline.String(),
		Fingerprint: w.pipeline.Fingerprint(),
		StartedAt:   startedAt,
		Files:       make([]m.FileReport, 0, spill.Len()),
	}

	err = spill.Range(func(_ uint64, entry m.FileReport) error {
		report.Files = append(report.Files, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read spill: %w", err)
	}

	slices.SortFunc(report.Files, func(a, b m.FileReport) int {
		return strings.Compare(string(a.Path), string(b.Path))
	})

	if args.Reports != "" {
		if err := w.SaveReport(ctx, args.Reports, report); err != nil {
			return nil, fmt.Errorf("save report: %w", err)
		}
	}

	if err := w.DisplaySummary(ctx, report); err != nil {
		return nil, fmt.Errorf("display: %w", err)
	}

	slog.Info("Run finished", "id", report.ID, "files", len(report.Files), "rewrites", report.Totals().Total())

	return report, nil
}

// carriedEntries collects the report entries of sources that were not
// transformed again. It is only read after the pending channel is closed.
type carriedEntries struct {
	entries []m.FileReport
}

// filterCached forwards the sources that need a transform and carries the
// report entries of the rest. Hash-based caching only applies to the check
// and write modes, since every other mode must deliver output for every
// file. Sources outside a non-nil only set keep their previous entry.
// resultSink stores the report of every streamed result.
type resultSink interface {
	Append(entry m.FileReport) error
}

// collect emits, displays and records every result. After the first sink
// error it calls cancel and keeps draining results so the transform
// workers can exit.
func (w *workflow) collect(ctx context.Context, results <-chan m.Result, sink resultSink, cancel context.CancelFunc) error {
	var sinkErr error

	for result := range results {
		if sinkErr != nil {
			continue
		}

		if err := w.Emit(ctx, result); err != nil {
			result.Status = m.Failed
			result.Err = fmt.Errorf("emit: %w", err)
			slog.Error("Failed to emit result", "path", result.Source.Origin.FullPath, "error", err)
		}

		w.DisplayResult(ctx, result)

		if err := sink.Append(fileReport(result)); err != nil {
			sinkErr = fmt.Errorf("append spill: %w", err)
			cancel()
		}
	}

	return sinkErr
}

func (w *workflow) filterCached(ctx context.Context, sources <-chan m.Source, previous *m.RunReport, only map[m.Path]struct{}) (<-chan m.Source, *carriedEntries) {
	pending := make(chan m.Source, cap(sources))
	carried := &carriedEntries{}

	cacheable := previous != nil &&
		previous.Fingerprint == w.pipeline.Fingerprint() &&
		(w.Mode() == ModeCheck || w.Mode() == ModeWrite)

	go func() {
		defer close(pending)

		for source := range sources {
			if entry, ok := w.cached(source, previous, cacheable, only); ok {
				carried.entries = append(carried.entries, entry)
				w.DisplayResult(ctx, m.Result{Source: source, Status: m.Cached, Stats: entry.Stats})

				continue
			}

			select {
			case <-ctx.Done():
				for range sources {
				}

				return
			case pending <- source:
			}
		}
	}()

	return pending, carried
}

func (w *workflow) cached(source m.Source, previous *m.RunReport, cacheable bool, only map[m.Path]struct{}) (m.FileReport, bool) {
	if previous == nil || source.Origin == nil {
		return m.FileReport{}, false
	}

	entry, ok := previous.Lookup(source.Origin.FullPath)
	if !ok {
		return m.FileReport{}, false
	}

	if _, touched := only[source.Origin.FullPath]; only != nil && !touched {
		return entry, true
	}

	if !cacheable || entry.Status == m.Failed.String() {
		return m.FileReport{}, false
	}

	switch source.Origin.Hash {
	case entry.InputHash:
		return carry(entry), true
	case entry.OutputHash:
		// the file is already in its transformed form
		entry.InputHash = entry.OutputHash
		entry.Stats = m.Stats{}

		return carry(entry), true
	default:
		return m.FileReport{}, false
	}
}

func carry(entry m.FileReport) m.FileReport {
	entry.Status = m.Cached.String()
	return entry
}

func fileReport(result m.Result) m.FileReport {
	entry := m.FileReport{
		Status: result.Status.String(),
		Stats:  result.Stats,
	}

	if origin := result.Source.Origin; origin != nil {
		entry.Path = origin.FullPath
		entry.InputHash = origin.Hash
	}

	switch result.Status {
	case m.Failed:
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
	case m.Unchanged:
		entry.OutputHash = entry.InputHash
	default:
		entry.OutputHash = adapter.HashBytes(result.Output)
	}

	return entry
}

// outcome maps a finished run to the error the command reports.
func outcome(report *m.RunReport, failOnChange bool) error {
	failed, pending := 0, 0

	for _, f := range report.Files {
		if f.Status == m.Failed.String() {
			failed++
		} else if f.OutputHash != "" && f.OutputHash != f.InputHash {
			pending++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d file(s)", ErrTransformFailed, failed)
	}

	if failOnChange && pending > 0 {
		return fmt.Errorf("%w: %d file(s)", ErrChangesPending, pending)
	}

	return nil
}

func (w *workflow) Watch(ctx context.Context, args TransformArgs) error {
	if err := w.Start(ctx, controller.WithWatchMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	defer w.Close(ctx)

	w.DisplayRunInfo(ctx, w.runInfo(args.Threads))

	report, err := w.run(ctx, args, w.previous(ctx, args), nil)
	if err != nil {
		return err
	}

	batches, watchErr := w.watcher.Watch(ctx, watchRoots(args.Paths))

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				if err := <-watchErr; err != nil {
					return err
				}

				return nil
			}

			slog.Info("Change detected", "files", len(batch))

			only := make(map[m.Path]struct{}, len(batch))
			for _, path := range batch {
				only[path] = struct{}{}
			}

			w.DisplayRunInfo(ctx, w.runInfo(args.Threads))

			next, err := w.run(ctx, args, report, only)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}

				return err
			}

			report = next
		}
	}
}

// watchRoots returns the directories or files named by path patterns.
func watchRoots(paths []m.Path) []m.Path {
	if len(paths) == 0 {
		return []m.Path{"."}
	}

	roots := make([]m.Path, 0, len(paths))

	for _, p := range paths {
		root := strings.TrimSuffix(strings.TrimSuffix(string(p), "..."), "/")
		if root == "" {
			root = "."
		}

		roots = append(roots, m.Path(root))
	}

	return roots
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(ctx, args.Reports)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return err
	}

	if err := w.DisplaySummary(ctx, report); err != nil {
		w.Close(ctx)
		return fmt.Errorf("display: %w", err)
	}

	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

func mergeErrorChannels(ch1, ch2 <-chan error) <-chan error {
	merged := make(chan error, 1)

	go func() {
		defer close(merged)

		for ch1 != nil || ch2 != nil {
			select {
			case err, ok := <-ch1:
				if !ok {
					ch1 = nil
				} else if err != nil {
					merged <- err
					return
				}
			case err, ok := <-ch2:
				if !ok {
					ch2 = nil
				} else if err != nil {
					merged <- err
					return
				}
			}
		}
	}()

	return merged
}
