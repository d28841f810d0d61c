package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// PickItem is a single selectable row in a picker.
type PickItem struct {
	Label string
	Hint  string // muted annotation rendered after the label
}

// pickItem adapts PickItem to the bubbles list.
type pickItem struct {
	item PickItem
}

func (i pickItem) FilterValue() string { return i.item.Label }

// pickDelegate renders rows as: "> label  hint", truncated to the list width.
type pickDelegate struct{}

func (d pickDelegate) Height() int                             { return 1 }
func (d pickDelegate) Spacing() int                            { return 0 }
func (d pickDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d pickDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(pickItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	indicator := "    "
	if isSelected {
		indicator = "  > "
	}

	label := pi.item.Label
	if isSelected {
		label = selectedItemStyle.Render(label)
	} else {
		label = normalItemStyle.Render(label)
	}

	line := indicator + label
	if pi.item.Hint != "" {
		line += "  " + mutedStyle.Render(pi.item.Hint)
	}
	if m.Width() > 0 {
		line = ansi.Truncate(line, m.Width(), "…")
	}

	_, _ = fmt.Fprint(w, line)
}

// pickerModel is a one-shot selection prompt.
type pickerModel struct {
	title     string
	list      list.Model
	choice    int
	cancelled bool
	done      bool
}

func newPickerModel(title string, items []PickItem) pickerModel {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = pickItem{item: it}
	}

	l := list.New(listItems, pickDelegate{}, 0, min(len(items)+1, 12))
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetShowPagination(false)

	return pickerModel{title: title, list: l, choice: -1}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Don't intercept keys while filtering.
		if m.list.SettingFilter() {
			break
		}

		switch msg.String() {
		case "enter":
			if _, ok := m.list.SelectedItem().(pickItem); ok {
				m.choice = m.list.GlobalIndex()
			}
			m.done = true
			return m, tea.Quit

		case "esc", "ctrl+c", "q":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	return titleStyle.Render(m.title) + "\n\n" +
		m.list.View() + "\n" +
		mutedStyle.Render("  enter select · / filter · esc cancel") + "\n"
}

// Pick runs a one-shot selection prompt and returns the index of the
// chosen item. ok is false when the user cancelled.
func Pick(title string, items []PickItem) (index int, ok bool, err error) {
	if len(items) == 0 {
		return 0, false, fmt.Errorf("nothing to pick from")
	}

	final, err := tea.NewProgram(newPickerModel(title, items)).Run()
	if err != nil {
		return 0, false, fmt.Errorf("running picker: %w", err)
	}

	m, k := final.(pickerModel)
	if !k || m.cancelled || m.choice < 0 {
		return 0, false, nil
	}
	return m.choice, true, nil
}
