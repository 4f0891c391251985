// Package tui lets a user pick which entry points become governance actions.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tristendillon/govgen/core/models"
)

var ErrCancelled = errors.New("selection cancelled")

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	None    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Confirm, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.All, k.None, k.Confirm, k.Quit},
	}
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	None:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
	Quit:    key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// SelectModel is a checklist over a module's entry points. Functions the
// classifier flagged start out checked.
type SelectModel struct {
	module    models.ModuleInfo
	functions []models.FunctionInfo
	selected  []bool
	cursor    int
	help      help.Model
	done      bool
	cancelled bool
}

func NewSelectModel(module models.ModuleInfo, functions []models.FunctionInfo) SelectModel {
	selected := make([]bool, len(functions))
	for i, fn := range functions {
		selected[i] = fn.GovernanceCandidate
	}
	return SelectModel{
		module:    module,
		functions: functions,
		selected:  selected,
		help:      help.New(),
	}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Confirm):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.functions)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Toggle):
		if len(m.selected) > 0 {
			m.selected[m.cursor] = !m.selected[m.cursor]
		}
	case key.Matches(keyMsg, keys.All):
		m.setAll(true)
	case key.Matches(keyMsg, keys.None):
		m.setAll(false)
	}
	return m, nil
}

func (m *SelectModel) setAll(v bool) {
	for i := range m.selected {
		m.selected[i] = v
	}
}

func (m SelectModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Governable actions for %s", m.module)))
	b.WriteString("\n\n")

	for i, fn := range m.functions {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		check := "[ ]"
		line := fmt.Sprintf("%s(%s)", fn.Name, paramList(fn.Parameters))
		if m.selected[i] {
			check = selectedStyle.Render("[x]")
		}
		b.WriteString(cursor + check + " " + line)
		if fn.Description != "" {
			b.WriteString(" " + dimStyle.Render(firstLine(fn.Description)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the checked function names in list order.
func (m SelectModel) Selected() []string {
	var names []string
	for i, fn := range m.functions {
		if m.selected[i] {
			names = append(names, fn.Name)
		}
	}
	return names
}

// Select runs the checklist and returns the chosen function names.
func Select(module models.ModuleInfo, functions []models.FunctionInfo) ([]string, error) {
	if len(functions) == 0 {
		return nil, fmt.Errorf("%s has no entry points", module)
	}

	result, err := tea.NewProgram(NewSelectModel(module, functions)).Run()
	if err != nil {
		return nil, err
	}
	final, ok := result.(SelectModel)
	if !ok || !final.done {
		return nil, ErrCancelled
	}
	return final.Selected(), nil
}

func paramList(params []models.ParameterInfo) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + ": " + p.Type
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
