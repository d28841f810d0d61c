package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputModel is a one-shot text input prompt.
type inputModel struct {
	prompt    string
	input     textinput.Model
	cancelled bool
	done      bool
}

func newInputModel(prompt, placeholder, initial string) inputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Focus()
	ti.CharLimit = 128
	ti.Width = 48

	return inputModel{prompt: prompt, input: ti}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return ""
	}
	return promptStyle.Render(m.prompt) + "\n\n  " +
		m.input.View() + "\n\n" +
		mutedStyle.Render("  enter confirm · esc cancel") + "\n"
}

// Input runs a one-shot text input prompt. ok is false when the user
// cancelled or submitted an empty value.
func Input(prompt, placeholder, initial string) (value string, ok bool, err error) {
	final, err := tea.NewProgram(newInputModel(prompt, placeholder, initial)).Run()
	if err != nil {
		return "", false, fmt.Errorf("running input: %w", err)
	}

	m, k := final.(inputModel)
	if !k || m.cancelled {
		return "", false, nil
	}
	value = m.input.Value()
	return value, value != "", nil
}
