package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"

	"gooze.dev/pkg/purebundle/internal/adapter"
	m "gooze.dev/pkg/purebundle/internal/model"
)

// Mode selects what happens with a transformed file.
type Mode string

// Output modes.
const (
	// ModeCheck only reports which files would change.
	ModeCheck Mode = "check"
	// ModeWrite rewrites changed files in place.
	ModeWrite Mode = "write"
	// ModeOutDir mirrors every transformed file below an output directory.
	ModeOutDir Mode = "out-dir"
	// ModeDiff prints a unified diff for every changed file.
	ModeDiff Mode = "diff"
	// ModeStdout prints the transformed text of every file.
	ModeStdout Mode = "stdout"
)

// ErrInvalidMode is returned for an unknown output mode.
var ErrInvalidMode = errors.New("invalid output mode")

// Modes returns the supported output modes.
func Modes() []Mode {
	return []Mode{ModeCheck, ModeWrite, ModeOutDir, ModeDiff, ModeStdout}
}

// ParseMode validates a mode name.
func ParseMode(name string) (Mode, error) {
	for _, mode := range Modes() {
		if string(mode) == name {
			return mode, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidMode, name)
}

// Emitter delivers transformed output.
type Emitter interface {
	Mode() Mode
	// Emit delivers one result. Failed and cached results are ignored.
	Emit(ctx context.Context, result m.Result) error
}

type emitter struct {
	adapter.SourceFSAdapter

	mode   Mode
	outDir m.Path

	mu  sync.Mutex
	out io.Writer
}

// NewEmitter creates an Emitter. outDir is required for ModeOutDir; out
// receives diffs and stdout output.
func NewEmitter(fsAdapter adapter.SourceFSAdapter, mode Mode, outDir m.Path, out io.Writer) (Emitter, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	if mode == ModeOutDir && outDir == "" {
		return nil, fmt.Errorf("%w: %s requires an output directory", ErrInvalidMode, mode)
	}

	return &emitter{
		SourceFSAdapter: fsAdapter,
		mode:            mode,
		outDir:          outDir,
		out:             out,
	}, nil
}

func (e *emitter) Mode() Mode {
	return e.mode
}

func (e *emitter) Emit(ctx context.Context, result m.Result) error {
	if result.Status == m.Failed || result.Status == m.Cached || result.Source.Origin == nil {
		return nil
	}

	origin := result.Source.Origin

	switch e.mode {
	case ModeCheck:
		return nil
	case ModeWrite:
		if result.Status != m.Changed {
			return nil
		}

		info, err := e.FileInfo(ctx, origin.FullPath)
		if err != nil {
			return fmt.Errorf("stat %s: %w", origin.FullPath, err)
		}

		return e.WriteFile(ctx, origin.FullPath, result.Output, info.Mode().Perm())
	case ModeOutDir:
		target := e.JoinPath(ctx, string(e.outDir), filepath.FromSlash(string(origin.ShortPath)))

		return e.WriteFile(ctx, target, result.Output, 0o644)
	case ModeDiff:
		if result.Status != m.Changed {
			return nil
		}

		original, err := e.ReadFile(ctx, origin.FullPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", origin.FullPath, err)
		}

		text, err := unifiedDiff(string(origin.ShortPath), original, result.Output)
		if err != nil {
			return err
		}

		return e.print(text)
	case ModeStdout:
		return e.print(string(result.Output))
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, e.mode)
	}
}

func (e *emitter) print(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := io.WriteString(e.out, text)

	return err
}

func unifiedDiff(name string, before, after []byte) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        splitLines(string(before)),
		B:        splitLines(string(after)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", name, err)
	}

	return text, nil
}

// splitLines splits s after each newline. Unlike difflib.SplitLines it does
// not report an empty line after a trailing newline.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")

	if last := len(lines) - 1; lines[last] == "" {
		lines = lines[:last]
	} else {
		lines[last] += "\n"
	}

	return lines
}
