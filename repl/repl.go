// Package repl implements the Read-Eval-Print Loop for the Fen
// programming language.
//
// The REPL provides an interactive interface for entering Fen source,
// compiling it through the token-driven front-end (compiler.CompileTokens)
// and running the result on the reference stack VM (package vm), with the
// result (or the ParseError/runtime error it produced) shown immediately.
// It uses the Charm libraries (Bubble Tea, Bubbles, Lipgloss) for a
// scrolling, styled terminal interface, and the system clipboard to copy
// the last evaluated value out of the terminal.
//
// Key features:
//   - A growable multiline input box (bubbles/textarea) instead of a
//     single-line prompt, since Fen expressions routinely span several
//     lines (match/fn bodies, let-chains)
//   - A scrolling output pane (bubbles/viewport) holding the session's
//     history, since that history can exceed the terminal height
//   - Bindings persist across lines: each line compiles as its own
//     standalone unit, but all share one VM global environment
//   - ctrl+y copies the last evaluated value's printed form to the system
//     clipboard
//   - A ":ast " entry prefix parses the rest of the line and shows its
//     ast.Program.String() surface-syntax dump instead of compiling and
//     running it
//
// The main entry point is the Start function, which initializes and runs
// the REPL.
package repl

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fen-lang/fen/compiler"
	"github.com/fen-lang/fen/lexer"
	"github.com/fen-lang/fen/parser"
	"github.com/fen-lang/fen/value"
	"github.com/fen-lang/fen/vm"
)

// Prompt marks the start of a fresh input; ContPrompt marks every
// continuation line of a multiline entry.
const (
	Prompt     = "fen> "
	ContPrompt = " ... "
)

// astPrefix, entered as the first line of an entry, shows the parsed
// program's surface-syntax dump (ast.Program.String()) instead of
// compiling and running it.
const astPrefix = ":ast "

// Options configures the REPL's startup behaviour.
type Options struct {
	NoColor      bool // Disable all lipgloss styling
	Debug        bool // Show the compiled bytecode alongside each result
	DumpBytecode bool // Always disassemble every compiled line, even on success
}

// Start initializes and runs the REPL as a Bubble Tea program.
func Start(options Options) {
	p := tea.NewProgram(initialModel(options), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running REPL:", err)
	}
}

// Styling.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	parseErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF5F87")).
				Bold(true)

	runtimeErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF8700")).
				Bold(true)

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	bytecodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44475A"))
)

// errKind classifies an entry's failure, mirroring spec.md §7's single
// ParseError kind for the front-end plus the runtime errors the VM raises.
type errKind int

const (
	noErr errKind = iota
	parseErr
	runtimeErr
)

// historyEntry is one compiled-and-run (or failed) line.
type historyEntry struct {
	input    string
	output   string
	bytecode string
	kind     errKind
	elapsed  time.Duration
}

// evalResultMsg reports the outcome of a background compile+run.
type evalResultMsg struct {
	input    string
	output   string
	bytecode string
	kind     errKind
	elapsed  time.Duration
	globals  map[string]value.Value
}

// model is the REPL's Bubble Tea state.
type model struct {
	input   textarea.Model
	output  viewport.Model
	history []historyEntry
	globals map[string]value.Value
	lastVal string
	clipMsg string
	ready   bool
	width   int
	height  int
	options Options
}

func initialModel(options Options) model {
	ta := textarea.New()
	ta.Placeholder = "def x = 1 + 2   (ctrl+e to evaluate, :ast to dump a parse tree, ctrl+c to quit)"
	ta.ShowLineNumbers = false
	ta.Focus()
	ta.SetHeight(4)

	vp := viewport.New(80, 20)

	return model{
		input:   ta,
		output:  vp,
		globals: value.NewGlobalEnv(),
		options: options,
	}
}

// Init satisfies tea.Model.
func (m model) Init() tea.Cmd {
	return textarea.Blink
}

// applyStyle renders text with style unless NoColor is set.
func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

// evalLine compiles a single REPL entry through the token-driven
// front-end and runs it against a VM sharing globals, reporting the
// updated globals back so later lines see the new bindings (spec.md §9's
// REPL note: each line compiles independently; bindings survive via the
// shared global environment, not a shared compiler).
func evalLine(input string, globals map[string]value.Value, dumpBytecode bool) tea.Cmd {
	if rest, ok := strings.CutPrefix(input, astPrefix); ok {
		return astLine(input, rest, globals)
	}
	return func() tea.Msg {
		start := time.Now()

		bc, err := compiler.CompileTokens(lexer.New(input))
		if err != nil {
			return evalResultMsg{
				input:   input,
				output:  err.Error(),
				kind:    parseErr,
				elapsed: time.Since(start),
				globals: globals,
			}
		}

		var dump string
		if dumpBytecode {
			dump = strings.TrimRight(string(compiler.Disassemble(bc)), "\n")
		}

		machine := vm.NewWithGlobals(bc, globals)
		result, err := machine.Run()
		if err != nil {
			return evalResultMsg{
				input:    input,
				output:   err.Error(),
				bytecode: dump,
				kind:     runtimeErr,
				elapsed:  time.Since(start),
				globals:  machine.Globals(),
			}
		}

		return evalResultMsg{
			input:    input,
			output:   result.Inspect(),
			bytecode: dump,
			kind:     noErr,
			elapsed:  time.Since(start),
			globals:  machine.Globals(),
		}
	}
}

// astLine parses src and reports its surface-syntax dump
// (ast.Program.String()) instead of compiling and running it. It never
// touches globals, since nothing is bound or executed; raw is the
// original ":ast ..." entry, kept for the history display.
func astLine(raw, src string, globals map[string]value.Value) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		p := parser.New(lexer.New(src))
		prog := p.ParseProgram()
		if errs := p.Errors(); len(errs) > 0 {
			return evalResultMsg{
				input:   raw,
				output:  strings.Join(errs, "\n"),
				kind:    parseErr,
				elapsed: time.Since(start),
				globals: globals,
			}
		}

		return evalResultMsg{
			input:   raw,
			output:  prog.String(),
			kind:    noErr,
			elapsed: time.Since(start),
			globals: globals,
		}
	}
}

// Update satisfies tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		headerHeight := 2
		footerHeight := 1
		inputHeight := m.input.Height() + 1
		m.output.Width = msg.Width
		m.output.Height = msg.Height - headerHeight - footerHeight - inputHeight
		m.input.SetWidth(msg.Width)
		m.ready = true
		m.output.SetContent(m.renderHistory())

	case evalResultMsg:
		m.history = append(m.history, historyEntry{
			input:    msg.input,
			output:   msg.output,
			bytecode: msg.bytecode,
			kind:     msg.kind,
			elapsed:  msg.elapsed,
		})
		m.globals = msg.globals
		if msg.kind == noErr {
			m.lastVal = msg.output
		}
		m.output.SetContent(m.renderHistory())
		m.output.GotoBottom()
		m.input.Reset()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit
		case "ctrl+e":
			src := strings.TrimRight(m.input.Value(), "\n")
			if strings.TrimSpace(src) == "" {
				return m, nil
			}
			return m, evalLine(src, m.globals, m.options.Debug || m.options.DumpBytecode)
		case "ctrl+y":
			if m.lastVal == "" {
				m.clipMsg = "nothing to copy yet"
			} else if err := clipboard.WriteAll(m.lastVal); err != nil {
				m.clipMsg = "clipboard error: " + err.Error()
			} else {
				m.clipMsg = "copied last value to clipboard"
			}
			return m, nil
		case "ctrl+l":
			m.history = nil
			m.clipMsg = ""
			m.output.SetContent("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.output, cmd = m.output.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// renderHistory rebuilds the viewport's content from m.history.
func (m model) renderHistory() string {
	var s strings.Builder
	for _, entry := range m.history {
		lines := strings.Split(entry.input, "\n")
		for i, line := range lines {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(line)
			s.WriteString("\n")
		}

		switch entry.kind {
		case parseErr:
			s.WriteString(m.applyStyle(parseErrorStyle, entry.output))
		case runtimeErr:
			s.WriteString(m.applyStyle(runtimeErrorStyle, entry.output))
		default:
			s.WriteString(m.applyStyle(resultStyle, entry.output))
		}
		s.WriteString("\n")

		if entry.bytecode != "" {
			s.WriteString(m.applyStyle(bytecodeStyle, entry.bytecode))
			s.WriteString("\n")
		}

		if entry.elapsed > 10*time.Millisecond {
			s.WriteString(m.applyStyle(historyStyle, fmt.Sprintf(" (%.3fs)", entry.elapsed.Seconds())))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}
	return s.String()
}

// View satisfies tea.Model.
func (m model) View() string {
	if !m.ready {
		return "initializing..."
	}

	var s strings.Builder
	s.WriteString(m.applyStyle(titleStyle, " Fen REPL "))
	s.WriteString("\n\n")
	s.WriteString(m.output.View())
	s.WriteString("\n")
	s.WriteString(m.input.View())
	s.WriteString("\n")

	footer := "ctrl+e evaluate · :ast <src> dump AST · ctrl+y copy last value · ctrl+l clear · ctrl+c quit"
	if m.clipMsg != "" {
		footer = m.clipMsg + "  ·  " + footer
	}
	s.WriteString(m.applyStyle(footerStyle, footer))

	return s.String()
}
