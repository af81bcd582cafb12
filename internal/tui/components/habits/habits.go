package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/wellkept/internal/ledger"
)

type AddHabitMsg struct{}

type MarkHabitMsg struct {
	ID string
}

type UnmarkHabitMsg struct {
	ID string
}

type DeactivateHabitMsg struct {
	ID   string
	Name string
}

type Item struct {
	Stats ledger.HabitStats
}

func (i Item) Title() string {
	if i.Stats.DoneToday {
		return "✓ " + i.Stats.Habit.Name
	}
	return "○ " + i.Stats.Habit.Name
}

func (i Item) Description() string {
	desc := fmt.Sprintf("+%d pts", i.Stats.Habit.Points)
	if i.Stats.CurrentStreak > 0 {
		desc += fmt.Sprintf(" · 🔥 %d day streak", i.Stats.CurrentStreak)
	}
	if i.Stats.BestStreak > 0 {
		desc += fmt.Sprintf(" · best %d", i.Stats.BestStreak)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Stats.Habit.Name }

type KeyMap struct {
	Add        key.Binding
	Toggle     key.Binding
	Unmark     key.Binding
	Deactivate key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "m"),
			key.WithHelp("space", "toggle done"),
		),
		Unmark: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Deactivate: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "deactivate"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(stats []ledger.HabitStats, width, height int) Model {
	l := list.New(toItems(stats), list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Deactivate}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Unmark, keys.Deactivate}
	}

	return Model{list: l, keys: keys}
}

func toItems(stats []ledger.HabitStats) []list.Item {
	items := make([]list.Item, len(stats))
	for i, s := range stats {
		items[i] = Item{Stats: s}
	}
	return items
}

func (m *Model) SetHabits(stats []ledger.HabitStats) {
	m.list.SetItems(toItems(stats))
}

// Items returns the habits currently shown
func (m Model) Items() []Item {
	out := make([]Item, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if i, ok := it.(Item); ok {
			out = append(out, i)
		}
	}
	return out
}

// Filtering reports whether the filter input has focus
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Select moves the cursor to index i
func (m *Model) Select(i int) {
	m.list.Select(i)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				id := i.Stats.Habit.ID
				if i.Stats.DoneToday {
					return m, func() tea.Msg { return UnmarkHabitMsg{ID: id} }
				}
				return m, func() tea.Msg { return MarkHabitMsg{ID: id} }
			}
		case key.Matches(msg, m.keys.Unmark):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Stats.DoneToday {
				id := i.Stats.Habit.ID
				return m, func() tea.Msg { return UnmarkHabitMsg{ID: id} }
			}
		case key.Matches(msg, m.keys.Deactivate):
			if i, ok := m.list.SelectedItem().(Item); ok {
				h := i.Stats.Habit
				return m, func() tea.Msg { return DeactivateHabitMsg{ID: h.ID, Name: h.Name} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
