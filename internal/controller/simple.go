package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/olekukonko/tablewriter"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// SimpleUI implements UI with plain line output and a summary table.
type SimpleUI struct {
	mu  sync.Mutex
	out io.Writer
}

// NewSimpleUI creates a new SimpleUI writing to out.
func NewSimpleUI(out io.Writer) *SimpleUI {
	return &SimpleUI{out: out}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayRunInfo prints the pipeline and concurrency settings.
func (s *SimpleUI) DisplayRunInfo(ctx context.Context, info RunInfo) {
	if ctx.Err() != nil {
		return
	}

	s.printf("Running %s (%s) with %d worker(s)\n", info.Pipeline, info.Mode, info.Threads)
}

// DisplayResult prints one line for every changed or failed file.
func (s *SimpleUI) DisplayResult(ctx context.Context, result m.Result) {
	if ctx.Err() != nil {
		return
	}

	line := formatResult(result)
	if line == "" {
		return
	}

	s.printf("%s\n", line)
}

func formatResult(result m.Result) string {
	path := ""
	if result.Source.Origin != nil {
		path = string(result.Source.Origin.ShortPath)
	}

	switch result.Status {
	case m.Changed:
		return fmt.Sprintf("%-9s %s (%d rewrites)", result.Status, path, result.Stats.Total())
	case m.Failed:
		return fmt.Sprintf("%-9s %s: %v", result.Status, path, result.Err)
	default:
		return ""
	}
}

// DisplaySummary renders the per-file table of a run report.
func (s *SimpleUI) DisplaySummary(ctx context.Context, report *m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if report == nil {
		return fmt.Errorf("no report to display")
	}

	s.printf("\n%s", renderSummaryTable(report))

	return nil
}

func renderSummaryTable(report *m.RunReport) string {
	files := append([]m.FileReport(nil), report.Files...)
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Status", "Elided", "Injected", "Wrapped", "Completed", "Pure"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER,
	})

	for _, f := range files {
		table.Append(append([]string{string(f.Path), f.Status}, statsColumns(f.Stats)...))
	}

	totals := report.Totals()
	table.SetFooter(append([]string{fmt.Sprintf("Total Files %d", len(files)), statusCounts(files)}, statsColumns(totals)...))

	table.Render()

	return tableBuffer.String()
}

func statsColumns(stats m.Stats) []string {
	return []string{
		fmt.Sprintf("%d", stats.ImportsElided),
		fmt.Sprintf("%d", stats.ImportsInjected),
		fmt.Sprintf("%d", stats.Wrapped),
		fmt.Sprintf("%d", stats.Completed),
		fmt.Sprintf("%d", stats.PureMarkers),
	}
}

func statusCounts(files []m.FileReport) string {
	changed, failed := 0, 0

	for _, f := range files {
		switch f.Status {
		case m.Changed.String():
			changed++
		case m.Failed.String():
			failed++
		}
	}

	return fmt.Sprintf("%d changed %d failed", changed, failed)
}

func (s *SimpleUI) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.out, format, args...)
}
