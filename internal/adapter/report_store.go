package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// ErrReportNotFound is returned by LoadReport when no report exists yet.
var ErrReportNotFound = errors.New("report not found")

// ReportStore persists run reports between invocations.
type ReportStore interface {
	SaveReport(ctx context.Context, path m.Path, report *m.RunReport) error
	LoadReport(ctx context.Context, path m.Path) (*m.RunReport, error)
}

// YAMLReportStore keeps a run report as a single YAML document.
type YAMLReportStore struct{}

// NewReportStore returns the YAML-backed ReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReport writes the report to path, replacing any previous one. File
// entries are sorted by path so reports diff cleanly.
func (s *YAMLReportStore) SaveReport(ctx context.Context, path m.Path, report *m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if report == nil {
		return errors.New("nil report")
	}

	sorted := *report
	sorted.Files = append([]m.FileReport(nil), report.Files...)
	sort.Slice(sorted.Files, func(i, j int) bool {
		return sorted.Files[i].Path < sorted.Files[j].Path
	})

	data, err := yaml.Marshal(&sorted)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp := string(path) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := os.Rename(tmp, string(path)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads the report stored at path.
func (s *YAMLReportStore) LoadReport(ctx context.Context, path m.Path) (*m.RunReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(string(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, path)
	}

	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}

	return &report, nil
}
