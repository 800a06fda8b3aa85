package controller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/purebundle/internal/model"
)

func update(t *testing.T, model runModel, msg tea.Msg) runModel {
	t.Helper()

	next, _ := model.Update(msg)

	rm, ok := next.(runModel)
	require.True(t, ok)

	return rm
}

func TestRunModel_Progress(t *testing.T) {
	model := newRunModel(ModeTransform)
	model = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 20})
	model = update(t, model, runInfoMsg{Pipeline: "purebundle", Mode: "write", Threads: 2})
	model = update(t, model, resultMsg(m.Result{Source: source("src/app.tsx"), Status: m.Changed, Stats: m.Stats{PureMarkers: 1}}))
	model = update(t, model, resultMsg(m.Result{Source: source("src/ok.ts"), Status: m.Unchanged}))
	model = update(t, model, resultMsg(m.Result{Source: source("src/bad.ts"), Status: m.Failed, Err: errors.New("boom")}))

	view := model.View()
	assert.Contains(t, view, "purebundle: purebundle (write, 2 workers)")
	assert.Contains(t, view, "src/app.tsx")
	assert.Contains(t, view, "src/bad.ts: boom")
	assert.NotContains(t, view, "src/ok.ts")
	assert.Contains(t, view, "1 changed  1 unchanged  0 cached  1 failed")
	assert.NotContains(t, view, "q quit")
}

func TestRunModel_Summary(t *testing.T) {
	model := newRunModel(ModeView)
	model = update(t, model, tea.WindowSizeMsg{Width: 120, Height: 30})
	model = update(t, model, summaryMsg{report: &m.RunReport{
		Files: []m.FileReport{
			{Path: "src/a.tsx", Status: m.Cached.String()},
			{Path: "src/b.ts", Status: m.Changed.String()},
		},
	}})

	view := model.View()
	assert.Contains(t, view, "purebundle report")
	assert.Contains(t, view, "src/a.tsx")
	assert.Contains(t, view, "1 changed  0 unchanged  1 cached  0 failed")
	assert.Contains(t, view, "q quit")

	// a new run in watch mode clears the previous summary
	model.mode = ModeWatch
	model = update(t, model, runInfoMsg{Pipeline: "purebundle", Mode: "check"})
	assert.NotContains(t, model.View(), "src/a.tsx")
}

func TestRunModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := newRunModel(ModeView).Update(key)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestRunModel_BeforeWindowSize(t *testing.T) {
	model := newRunModel(ModeTransform)
	model = update(t, model, resultMsg(m.Result{Source: source("src/app.tsx"), Status: m.Changed}))

	assert.True(t, strings.Contains(model.View(), "src/app.tsx"))
}

func TestTUI_DisplaySummaryRequiresReport(t *testing.T) {
	tui := NewTUI(&bytes.Buffer{})

	require.Error(t, tui.DisplaySummary(context.Background(), nil))

	// without a running program every call is a no-op
	tui.DisplayResult(context.Background(), m.Result{})
	tui.Wait(context.Background())
	tui.Close(context.Background())
}
