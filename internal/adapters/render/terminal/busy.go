package terminal

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const elapsedAfter = time.Second

type busyDoneMsg struct{}

// busyModel shows a spinner next to the label while an LLM or filesystem
// call runs. Waits longer than a second also show the elapsed time.
type busyModel struct {
	spin     spinner.Model
	label    string
	hint     lipgloss.Style
	started  time.Time
	now      func() time.Time
	work     tea.Cmd
	finished bool
}

func newBusyModel(label string, st styles, now func() time.Time, work tea.Cmd) busyModel {
	return busyModel{
		spin:    spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(st.busy)),
		label:   label,
		hint:    st.hint,
		started: now(),
		now:     now,
		work:    work,
	}
}

func (m busyModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.work)
}

func (m busyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case busyDoneMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m busyModel) View() string {
	if m.finished {
		return ""
	}

	line := m.spin.View() + " " + m.label
	if elapsed := m.now().Sub(m.started); elapsed >= elapsedAfter {
		line += " " + m.hint.Render(fmt.Sprintf("(%ds)", int(elapsed/time.Second)))
	}
	return line
}

// runBusy runs work behind the busy indicator. The program gets no input so
// the REPL keeps reading stdin.
func runBusy(ctx context.Context, out io.Writer, label string, st styles, work func(context.Context) error) error {
	var workErr error
	cmd := func() tea.Msg {
		workErr = work(ctx)
		return busyDoneMsg{}
	}

	program := tea.NewProgram(
		newBusyModel(label, st, time.Now, cmd),
		tea.WithInput(nil),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("run busy indicator: %w", err)
	}

	return workErr
}
