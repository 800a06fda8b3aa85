package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "gooze.dev/pkg/purebundle/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	changedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
)

// chromeLines is the number of lines taken by the header and footer.
const chromeLines = 3

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)

	programOptions := []tea.ProgramOption{tea.WithOutput(t.output), tea.WithContext(ctx)}
	if cfg.mode == ModeView {
		programOptions = append(programOptions, tea.WithAltScreen())
	}

	program := tea.NewProgram(newRunModel(cfg.mode), programOptions...)
	done := make(chan struct{})

	t.mu.Lock()
	t.program = program
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)

		_, _ = program.Run()
	}()

	return nil
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// Close stops the program and restores the terminal.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program = nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait blocks until the user quits or ctx is done.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
	}
}

// DisplayRunInfo shows the pipeline in the header.
func (t *TUI) DisplayRunInfo(_ context.Context, info RunInfo) {
	t.send(runInfoMsg(info))
}

// DisplayResult appends one file to the progress list.
func (t *TUI) DisplayResult(_ context.Context, result m.Result) {
	t.send(resultMsg(result))
}

// DisplaySummary replaces the progress list with the report table.
func (t *TUI) DisplaySummary(_ context.Context, report *m.RunReport) error {
	if report == nil {
		return fmt.Errorf("no report to display")
	}

	t.send(summaryMsg{report: report})

	return nil
}

type (
	runInfoMsg RunInfo
	resultMsg  m.Result
	summaryMsg struct{ report *m.RunReport }
)

// runModel is the Bubble Tea model shared by every start mode.
type runModel struct {
	mode     StartMode
	info     RunInfo
	lines    []string
	counts   map[m.Status]int
	summary  string
	finished bool
	viewport viewport.Model
	ready    bool
}

func newRunModel(mode StartMode) runModel {
	return runModel{
		mode:   mode,
		counts: map[m.Status]int{},
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-chromeLines, 1)
		if !rm.ready {
			rm.viewport = viewport.New(msg.Width, height)
			rm.ready = true
		} else {
			rm.viewport.Width = msg.Width
			rm.viewport.Height = height
		}

		rm.viewport.SetContent(rm.content())

		return rm, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return rm, tea.Quit
		}
	case runInfoMsg:
		rm.info = RunInfo(msg)
		rm.lines = nil
		rm.counts = map[m.Status]int{}
		rm.summary = ""
		rm.finished = false
		rm.refresh(true)

		return rm, nil
	case resultMsg:
		rm.counts[msg.Status]++
		if line := styledResult(m.Result(msg)); line != "" {
			rm.lines = append(rm.lines, line)
		}

		rm.refresh(true)

		return rm, nil
	case summaryMsg:
		rm.summary = renderSummaryTable(msg.report)
		rm.counts = countStatuses(msg.report.Files)
		rm.finished = true
		rm.refresh(false)

		return rm, nil
	}

	var cmd tea.Cmd
	if rm.ready {
		rm.viewport, cmd = rm.viewport.Update(msg)
	}

	return rm, cmd
}

func (rm *runModel) refresh(follow bool) {
	if !rm.ready {
		return
	}

	rm.viewport.SetContent(rm.content())

	if follow {
		rm.viewport.GotoBottom()
	} else {
		rm.viewport.GotoTop()
	}
}

func (rm runModel) content() string {
	if rm.summary != "" {
		return rm.summary
	}

	return strings.Join(rm.lines, "\n")
}

func countStatuses(files []m.FileReport) map[m.Status]int {
	counts := map[m.Status]int{}

	for _, f := range files {
		for _, status := range []m.Status{m.Unchanged, m.Changed, m.Cached, m.Failed} {
			if f.Status == status.String() {
				counts[status]++
			}
		}
	}

	return counts
}

func styledResult(result m.Result) string {
	line := formatResult(result)

	switch result.Status {
	case m.Changed:
		return changedStyle.Render(line)
	case m.Failed:
		return failedStyle.Render(line)
	default:
		return line
	}
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(rm.title()))
	b.WriteString("\n\n")

	if rm.ready {
		b.WriteString(rm.viewport.View())
	} else {
		b.WriteString(rm.content())
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(rm.footer()))

	return b.String()
}

func (rm runModel) title() string {
	switch rm.mode {
	case ModeView:
		return "purebundle report"
	case ModeWatch:
		return fmt.Sprintf("purebundle watch: %s (%s)", rm.info.Pipeline, rm.info.Mode)
	default:
		return fmt.Sprintf("purebundle: %s (%s, %d workers)", rm.info.Pipeline, rm.info.Mode, rm.info.Threads)
	}
}

func (rm runModel) footer() string {
	status := fmt.Sprintf("%d changed  %d unchanged  %d cached  %d failed",
		rm.counts[m.Changed], rm.counts[m.Unchanged], rm.counts[m.Cached], rm.counts[m.Failed])

	if rm.finished || rm.mode == ModeView {
		return status + "  ·  ↑/↓ scroll  q quit"
	}

	return status
}
