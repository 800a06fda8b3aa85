package domain_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/purebundle/internal/adapter"
	"gooze.dev/pkg/purebundle/internal/domain"
	m "gooze.dev/pkg/purebundle/internal/model"
)

func changedResult(t *testing.T, dir string) m.Result {
	t.Helper()

	src := writeSource(t, dir, "src/app.ts", "const a = make();\n")

	return m.Result{Source: src, Status: m.Changed, Output: []byte("const a = /*#__PURE__*/ make();\n")}
}

func TestParseMode(t *testing.T) {
	for _, mode := range domain.Modes() {
		got, err := domain.ParseMode(string(mode))
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}

	_, err := domain.ParseMode("inplace")
	require.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestEmitter(t *testing.T) {
	ctx := context.Background()
	fs := adapter.NewLocalSourceFSAdapter()

	t.Run("check leaves files alone", func(t *testing.T) {
		var out bytes.Buffer
		result := changedResult(t, t.TempDir())

		e, err := domain.NewEmitter(fs, domain.ModeCheck, "", &out)
		require.NoError(t, err)
		require.NoError(t, e.Emit(ctx, result))

		content, err := os.ReadFile(string(result.Source.Origin.FullPath))
		require.NoError(t, err)
		assert.Equal(t, "const a = make();\n", string(content))
		assert.Empty(t, out.String())
	})

	t.Run("write rewrites in place", func(t *testing.T) {
		result := changedResult(t, t.TempDir())

		e, err := domain.NewEmitter(fs, domain.ModeWrite, "", &bytes.Buffer{})
		require.NoError(t, err)
		require.NoError(t, e.Emit(ctx, result))

		content, err := os.ReadFile(string(result.Source.Origin.FullPath))
		require.NoError(t, err)
		assert.Equal(t, string(result.Output), string(content))
	})

	t.Run("out-dir mirrors the tree", func(t *testing.T) {
		result := changedResult(t, t.TempDir())
		outDir := filepath.Join(t.TempDir(), "dist")

		e, err := domain.NewEmitter(fs, domain.ModeOutDir, m.Path(outDir), &bytes.Buffer{})
		require.NoError(t, err)
		require.NoError(t, e.Emit(ctx, result))

		content, err := os.ReadFile(filepath.Join(outDir, "src", "app.ts"))
		require.NoError(t, err)
		assert.Equal(t, string(result.Output), string(content))
	})

	t.Run("out-dir requires a directory", func(t *testing.T) {
		_, err := domain.NewEmitter(fs, domain.ModeOutDir, "", &bytes.Buffer{})
		require.ErrorIs(t, err, domain.ErrInvalidMode)
	})

	t.Run("diff prints a unified diff", func(t *testing.T) {
		var out bytes.Buffer
		result := changedResult(t, t.TempDir())

		e, err := domain.NewEmitter(fs, domain.ModeDiff, "", &out)
		require.NoError(t, err)
		require.NoError(t, e.Emit(ctx, result))

		assert.Equal(t,
			"--- a/src/app.ts\n+++ b/src/app.ts\n@@ -1 +1 @@\n-const a = make();\n+const a = /*#__PURE__*/ make();\n",
			out.String())
	})

	t.Run("stdout prints output", func(t *testing.T) {
		var out bytes.Buffer
		result := changedResult(t, t.TempDir())

		e, err := domain.NewEmitter(fs, domain.ModeStdout, "", &out)
		require.NoError(t, err)
		require.NoError(t, e.Emit(ctx, result))

		assert.Equal(t, string(result.Output), out.String())
	})

	t.Run("failed and cached results are skipped", func(t *testing.T) {
		var out bytes.Buffer

		e, err := domain.NewEmitter(fs, domain.ModeStdout, "", &out)
		require.NoError(t, err)

		result := changedResult(t, t.TempDir())
		result.Status = m.Failed
		require.NoError(t, e.Emit(ctx, result))

		result.Status = m.Cached
		require.NoError(t, e.Emit(ctx, result))

		assert.Empty(t, out.String())
	})
}
