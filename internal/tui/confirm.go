package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmModel is a one-shot yes/no prompt.
//
// Navigation: left/right/tab move focus between Yes and No. Enter
// activates the focused button. y/n/esc are shortcut accelerators.
// Focus defaults to No.
type confirmModel struct {
	message   string
	focusYes  bool
	confirmed bool
	done      bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "esc", "ctrl+c":
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "shift+tab", "h", "l":
		m.focusYes = !m.focusYes
		return m, nil
	case "enter":
		m.confirmed = m.focusYes
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	yes := buttonStyle.Render("Yes")
	no := buttonFocusedStyle.Render("No")
	if m.focusYes {
		yes = buttonFocusedStyle.Render("Yes")
		no = buttonStyle.Render("No")
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes, "  ", no)

	return promptStyle.Render(m.message) + "\n\n  " + buttons + "\n\n" +
		mutedStyle.Render("  y/n shortcuts · enter confirm · esc cancel") + "\n"
}

// Confirm runs a one-shot yes/no prompt. Returns false on cancel.
func Confirm(message string) (bool, error) {
	final, err := tea.NewProgram(confirmModel{message: message}).Run()
	if err != nil {
		return false, fmt.Errorf("running confirm: %w", err)
	}

	m, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return m.confirmed, nil
}
