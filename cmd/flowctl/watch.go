package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/flowctl/internal/config"
	"github.com/alexisbeaulieu97/flowctl/internal/history"
	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/observability"
)

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	watchLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	watchErrStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	watchOkStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

const watchMaxLines = 200

// lineMsg carries one observability line from the running pipe into the
// bubbletea event loop.
type lineMsg string

// doneMsg carries the pipe's terminal outcome.
type doneMsg struct {
	result namespace.Namespace
	err    error
}

type watchModel struct {
	pipeName string
	lines    chan string
	done     chan doneMsg

	spinner  spinner.Model
	seen     []string
	finished bool
	result   namespace.Namespace
	err      error
}

func newWatchModel(pipeName string, lines chan string, done chan doneMsg) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return watchModel{pipeName: pipeName, lines: lines, done: done, spinner: s}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForLine(m.lines), waitForDone(m.done))
}

func waitForLine(lines chan string) tea.Cmd {
	return func() tea.Msg {
		line, ok := <-lines
		if !ok {
			return nil
		}
		return lineMsg(line)
	}
}

func waitForDone(done chan doneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-done
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.finished && (msg.String() == "enter" || msg.String() == "q" || msg.String() == "ctrl+c") {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case lineMsg:
		m.seen = append(m.seen, string(msg))
		if len(m.seen) > watchMaxLines {
			m.seen = m.seen[len(m.seen)-watchMaxLines:]
		}
		return m, waitForLine(m.lines)
	case doneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		return m, nil
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", watchTitleStyle.Render("flowctl run"), m.pipeName)

	for _, line := range m.seen {
		fmt.Fprintln(&b, watchLineStyle.Render(line))
	}

	b.WriteString("\n")
	switch {
	case !m.finished:
		fmt.Fprintf(&b, "%s running...\n", m.spinner.View())
	case m.err != nil:
		fmt.Fprintf(&b, "%s %s\n", watchErrStyle.Render("✖"), m.err.Error())
		b.WriteString("press enter to exit\n")
	default:
		fmt.Fprintf(&b, "%s pipe completed\n", watchOkStyle.Render("✔"))
		b.WriteString("press enter to exit\n")
	}

	return b.String()
}

// runWatched drives a pipe run inside a bubbletea program, streaming
// metrics events as they arrive instead of printing a static trace.
func runWatched(cmd *cobra.Command, app *AppContext, doc *config.Document, models *model.Registry, input map[string]any, hist *history.Store) error {
	sink := observability.NewChannelSink(256)
	done := make(chan doneMsg, 1)

	built, err := config.Build(doc, app.Operators, models, app.Resolver, sink, nil)
	if err != nil {
		return err
	}

	go func() {
		started := time.Now()
		result, callErr := built.Call(cmd.Context(), input)
		recordRun(hist, doc.Name, started, callErr)
		close(sink.Lines)
		done <- doneMsg{result: result, err: callErr}
	}()

	program := tea.NewProgram(newWatchModel(doc.Name, sink.Lines, done))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	final := finalModel.(watchModel)
	if final.err != nil {
		return final.err
	}
	return printResult(cmd, final.result.ToMapping(), false)
}
