package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.starlark.net/starlark"
	"golang.org/x/term"

	"github.com/wippyai/hostobj/starlarkhost"
	"github.com/wippyai/hostobj/transcoder"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	exprStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	formatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var formats = []string{"repr", "json", "yaml"}

// maxHistory bounds the evaluations kept on screen.
const maxHistory = 8

type evaluation struct {
	err    error
	expr   string
	format string
	result string
}

type interactiveModel struct {
	host    *starlarkhost.Host
	dec     *transcoder.Decoder
	input   textinput.Model
	history []evaluation
	format  int
	// evaluating is set while an evaluate command runs; the host's thread
	// must not be entered twice.
	evaluating bool
}

func newInteractiveModel() *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = `struct(name="John", tags=["a", "b"])`
	ti.Prompt = ">>> "
	ti.Width = 60
	ti.Focus()

	return &interactiveModel{
		host:  starlarkhost.New(&starlark.Thread{Name: "repl"}),
		dec:   transcoder.NewDecoder(),
		input: ti,
	}
}

type evalResultMsg struct {
	evaluation
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			m.format = (m.format + 1) % len(formats)
			return m, nil

		case "enter":
			expr := strings.TrimSpace(m.input.Value())
			if expr == "" || m.evaluating {
				return m, nil
			}
			m.input.SetValue("")
			m.evaluating = true
			return m, m.evaluate(expr, formats[m.format])
		}

	case evalResultMsg:
		m.evaluating = false
		m.history = append(m.history, msg.evaluation)
		if len(m.history) > maxHistory {
			m.history = m.history[len(m.history)-maxHistory:]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// evaluate runs on a bubbletea command goroutine. Update starts at most one
// at a time, so the host's thread is entered by one goroutine only.
func (m *interactiveModel) evaluate(expr, format string) tea.Cmd {
	return func() tea.Msg {
		ev := evaluation{expr: expr, format: format}
		obj, err := m.host.Eval(expr)
		if err != nil {
			ev.err = err
			return evalResultMsg{ev}
		}
		ev.result, ev.err = render(m.host, m.dec, obj, format)
		return evalResultMsg{ev}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hostobj"))
	b.WriteString(" Starlark ")
	b.WriteString(formatStyle.Render("[" + formats[m.format] + "]"))
	b.WriteString("\n\n")

	for _, ev := range m.history {
		b.WriteString(exprStyle.Render(">>> " + ev.expr))
		b.WriteString(" ")
		b.WriteString(formatStyle.Render(ev.format))
		b.WriteString("\n")
		if ev.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", ev.err)))
		} else {
			b.WriteString(resultStyle.Render(ev.result))
		}
		b.WriteString("\n\n")
	}

	if m.evaluating {
		b.WriteString(helpStyle.Render("evaluating..."))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter evaluate • tab output format • esc quit"))
	return b.String()
}

func runInteractive() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
