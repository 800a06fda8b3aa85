// Package controller provides output adapters for displaying transform runs.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "gooze.dev/pkg/purebundle/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeTransform StartMode = iota
	ModeWatch
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithTransformMode sets the UI to a single transform run.
func WithTransformMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeTransform
	}
}

// WithWatchMode sets the UI to repeated runs driven by file changes.
func WithWatchMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeWatch
	}
}

// WithViewMode sets the UI to browsing a stored report.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// RunInfo describes a run before any file is processed.
type RunInfo struct {
	Pipeline string
	Mode     string
	Threads  int
}

// UI defines the interface for displaying transform progress and reports.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayRunInfo(ctx context.Context, info RunInfo)
	DisplayResult(ctx context.Context, result m.Result)
	DisplaySummary(ctx context.Context, report *m.RunReport) error
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewUI returns the interactive TUI when interactive is set and the plain
// text UI otherwise. Both write to the command's output.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd.OutOrStdout())
}
