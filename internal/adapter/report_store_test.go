package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/purebundle/internal/model"
)

func TestYAMLReportStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		store := NewReportStore()
		path := m.Path(filepath.Join(t.TempDir(), "reports", "purebundle.yaml"))

		report := &m.RunReport{
			ID:          "0192f0a4-0000-7000-8000-000000000000",
			Pipeline:    "purebundle",
			Fingerprint: "abc",
			StartedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Files: []m.FileReport{
				{Path: "b.ts", Status: m.Unchanged.String(), InputHash: "2"},
				{Path: "a.tsx", Status: m.Changed.String(), InputHash: "1", OutputHash: "9", Stats: m.Stats{PureMarkers: 3}},
			},
		}

		require.NoError(t, store.SaveReport(ctx, path, report))

		loaded, err := store.LoadReport(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, report.ID, loaded.ID)
		assert.Equal(t, report.Fingerprint, loaded.Fingerprint)
		assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
		require.Len(t, loaded.Files, 2)
		assert.Equal(t, m.Path("a.tsx"), loaded.Files[0].Path)
		assert.Equal(t, 3, loaded.Files[0].Stats.PureMarkers)

		// the caller's slice is left in its original order
		assert.Equal(t, m.Path("b.ts"), report.Files[0].Path)
	})

	t.Run("missing report", func(t *testing.T) {
		store := NewReportStore()

		_, err := store.LoadReport(ctx, m.Path(filepath.Join(t.TempDir(), "missing.yaml")))
		require.ErrorIs(t, err, ErrReportNotFound)
	})

	t.Run("corrupt report", func(t *testing.T) {
		store := NewReportStore()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("files: [oops"), 0o600))

		_, err := store.LoadReport(ctx, m.Path(path))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrReportNotFound)
	})
}
