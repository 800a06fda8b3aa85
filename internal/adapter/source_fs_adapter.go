// Package adapter contains the infrastructure adapters of the purebundle CLI:
// parsing and printing, the file system, report storage and file watching.
package adapter

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zeebo/xxh3"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// SourceFSAdapter abstracts the file-system operations the domain layer
// relies on, so the workflow logic can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Get resolves path patterns into transformable sources.
	Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error)

	// GetChannel streams the sources for the given path patterns.
	GetChannel(ctx context.Context, paths []m.Path, buffer int, exclude ...string) (<-chan m.Source, <-chan error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// WriteFile writes content, creating parent directories as needed.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// HashFile returns the content fingerprint of the file at path.
	HashFile(ctx context.Context, path m.Path) (string, error)

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// HashBytes returns the hex-encoded xxh3 fingerprint of content.
func HashBytes(content []byte) string {
	h := xxh3.New()
	_, _ = h.Write(content)

	return hex.EncodeToString(h.Sum(nil))
}

// LocalSourceFSAdapter is the SourceFSAdapter backed by the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// skippedDirs are never descended into. Hidden directories are skipped too.
var skippedDirs = map[string]struct{}{
	"node_modules": {},
	"dist":         {},
}

// Get collects every source reachable from paths.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error) {
	sourceCh, errCh := a.GetChannel(ctx, paths, 1, exclude...)

	var sources []m.Source
	for src := range sourceCh {
		sources = append(sources, src)
	}

	if err := <-errCh; err != nil {
		return nil, err
	}

	return sources, nil
}

// GetChannel resolves the path patterns in the background. Patterns follow
// the Go tool convention: "dir/..." is recursive, "dir" covers only that
// directory and a file path names a single file. No paths means "./...".
// The error channel yields at most one error and is closed after the source
// channel.
func (a *LocalSourceFSAdapter) GetChannel(ctx context.Context, paths []m.Path, buffer int, exclude ...string) (<-chan m.Source, <-chan error) {
	if buffer <= 0 {
		buffer = 1
	}

	sourceCh := make(chan m.Source, buffer)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(sourceCh)

		excludes, err := compileExcludes(exclude)
		if err != nil {
			errCh <- err
			return
		}

		if len(paths) == 0 {
			paths = []m.Path{"./..."}
		}

		seen := make(map[string]struct{})

		for _, pattern := range paths {
			root, recursive := splitPattern(string(pattern))

			err := a.walk(ctx, root, recursive, func(path string) error {
				if _, dup := seen[path]; dup || excluded(path, excludes) {
					return nil
				}

				seen[path] = struct{}{}

				src, ok, err := a.source(ctx, root, path)
				if err != nil || !ok {
					return err
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case sourceCh <- src:
					return nil
				}
			})
			if err != nil {
				errCh <- err
				return
			}
		}
	}()

	return sourceCh, errCh
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}

		out = append(out, re)
	}

	return out, nil
}

func excluded(path string, excludes []*regexp.Regexp) bool {
	slashed := filepath.ToSlash(path)

	for _, re := range excludes {
		if re.MatchString(slashed) {
			return true
		}
	}

	return false
}

func splitPattern(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}

	if root, ok := strings.CutSuffix(pattern, "/..."); ok {
		if root == "" {
			root = "."
		}

		return root, true
	}

	return pattern, false
}

func (a *LocalSourceFSAdapter) walk(ctx context.Context, root string, recursive bool, fn func(path string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		return fn(root)
	}

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}

			if _, skip := skippedDirs[d.Name()]; skip || !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if _, ok := m.DialectForPath(m.Path(path)); !ok {
			return nil
		}

		return fn(path)
	})
}

func (a *LocalSourceFSAdapter) source(ctx context.Context, root, path string) (m.Source, bool, error) {
	dialect, ok := m.DialectForPath(m.Path(path))
	if !ok {
		return m.Source{}, false, nil
	}

	hash, err := a.HashFile(ctx, m.Path(path))
	if err != nil {
		return m.Source{}, false, fmt.Errorf("hash error for %s: %w", path, err)
	}

	short := path
	if rel, err := filepath.Rel(root, path); err == nil && rel != "." {
		short = rel
	}

	return m.Source{
		Origin: &m.File{
			FullPath:  m.Path(path),
			ShortPath: m.Path(filepath.ToSlash(short)),
			Hash:      hash,
		},
		Dialect: dialect,
	}, true, nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(string(path))
}

// WriteFile writes content to path, creating missing parent directories.
func (a *LocalSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// HashFile returns the xxh3 fingerprint of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(ctx context.Context, path m.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.Stat(string(path))
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(_ context.Context, base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
