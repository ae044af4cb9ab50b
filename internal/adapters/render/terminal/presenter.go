package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/bnema/fileassist/internal/ports"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

const defaultWidth = 80

type Options struct {
	In  io.Reader
	Out io.Writer
	// Interactive forces TTY behaviour on or off. When nil it is detected
	// from Out.
	Interactive *bool
}

// Presenter renders assistant output on a terminal and reads answers from
// the same line reader the REPL uses.
type Presenter struct {
	mu          sync.Mutex
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	width       int
	styles      styles
	markdown    *glamour.TermRenderer
}

var _ ports.Presenter = (*Presenter)(nil)

func New(opts Options) *Presenter {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	interactive, width := detectTerminal(opts.Out)
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}

	renderer := lipgloss.NewRenderer(opts.Out)

	return &Presenter{
		in:          bufio.NewReader(opts.In),
		out:         opts.Out,
		interactive: interactive,
		width:       width,
		styles:      newStyles(renderer),
		markdown:    newMarkdownRenderer(interactive, width),
	}
}

func detectTerminal(w io.Writer) (bool, int) {
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return false, defaultWidth
	}

	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		width = defaultWidth
	}
	if width > 120 {
		width = 120
	}
	return true, width
}

func newMarkdownRenderer(interactive bool, width int) *glamour.TermRenderer {
	style := glamour.WithStandardStyle("notty")
	if interactive {
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width-4))
	if err != nil {
		return nil
	}
	return renderer
}

// Interactive reports whether prompts are answered by a person at a TTY.
func (p *Presenter) Interactive() bool {
	return p.interactive
}

func (p *Presenter) println(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintln(p.out, text)
}

func (p *Presenter) Info(message string) {
	p.println(p.styles.info.Render(message))
}

func (p *Presenter) Warn(message string) {
	p.println(p.styles.warning.Render("Warning: ") + message)
}

func (p *Presenter) Success(message string) {
	p.println(p.styles.success.Render(message))
}

func (p *Presenter) Error(title string, message string) {
	p.println(p.box(p.styles.failure, title, message))
}

func (p *Presenter) Panel(title string, body string) {
	p.println(p.box(p.styles.panel, title, body))
}

func (p *Presenter) box(style lipgloss.Style, title string, body string) string {
	content := strings.TrimRight(body, "\n")
	if title != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, p.styles.title.Render(title), content)
	}
	return style.Width(p.width - 2).Render(content)
}

func (p *Presenter) Markdown(title string, markdown string) {
	rendered := markdown
	if p.markdown != nil {
		if out, err := p.markdown.Render(markdown); err == nil {
			rendered = out
		}
	}

	lines := make([]string, 0, 2)
	if title != "" {
		lines = append(lines, p.styles.title.Render(title))
	}
	lines = append(lines, strings.TrimRight(rendered, "\n"))
	p.println(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (p *Presenter) Table(title string, headers []string, rows [][]string) {
	s := p.styles
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return s.cell
		})

	lines := make([]string, 0, 2)
	if title != "" {
		lines = append(lines, s.title.Render(title))
	}
	lines = append(lines, t.String())
	p.println(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Prompt reads one line. A final line without a newline is returned with a
// nil error; io.EOF is reported only when nothing was read.
func (p *Presenter) Prompt(label string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if label != "" {
		_, _ = fmt.Fprint(p.out, p.styles.prompt.Render(label))
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (p *Presenter) Confirm(question string) (bool, error) {
	answer, err := p.Prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Spin runs fn behind the busy indicator on a TTY and directly otherwise.
func (p *Presenter) Spin(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	if !p.interactive {
		return fn(ctx)
	}

	return runBusy(ctx, p.out, label, p.styles, fn)
}
