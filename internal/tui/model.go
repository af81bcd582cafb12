// Package tui is the interactive today checklist.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/models"
	"github.com/julianstephens/wellkept/internal/tui/components/habits"
)

type HabitFormModel struct {
	Name        string
	Description string
	Category    string
	Points      string
}

type Model struct {
	svc               *ledger.Service
	owner             string
	state             constants.SessionState
	keys              KeyMap
	help              help.Model
	habitsModel       habits.Model
	account           models.AccountSummary
	form              *huh.Form
	habitForm         *HabitFormModel
	habitToDeactivate habits.DeactivateHabitMsg
	toast             string
	errMsg            string
	quitting          bool
	width             int
	height            int
}

// refreshMsg carries a fresh read of today's habits and the account
type refreshMsg struct {
	stats   []ledger.HabitStats
	account models.AccountSummary
	err     error
}

type toggledMsg struct {
	result    ledger.ToggleResult
	completed bool
	err       error
}

type habitCreatedMsg struct {
	habit models.Habit
	err   error
}

type habitDeactivatedMsg struct {
	habit models.Habit
	err   error
}

func NewModel(svc *ledger.Service, owner string) Model {
	return Model{
		svc:         svc,
		owner:       owner,
		state:       constants.StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(nil, 0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	hk := habits.DefaultKeyMap()
	return []key.Binding{hk.Toggle, hk.Add, hk.Deactivate, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	hk := habits.DefaultKeyMap()
	global := []key.Binding{m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	actions := []key.Binding{hk.Toggle, hk.Unmark, hk.Add, hk.Deactivate}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) refresh() tea.Cmd {
	svc, owner := m.svc, m.owner
	return func() tea.Msg {
		ctx := context.Background()
		stats, err := svc.ListHabitStats(ctx, owner)
		if err != nil {
			return refreshMsg{err: err}
		}
		sum, err := svc.GetAccountSummary(ctx, owner)
		return refreshMsg{stats: stats, account: sum, err: err}
	}
}

func (m Model) toggle(habitID string, completed bool) tea.Cmd {
	svc, owner := m.svc, m.owner
	return func() tea.Msg {
		res, err := svc.Toggle(context.Background(), owner, habitID, svc.Today(), completed, "")
		return toggledMsg{result: res, completed: completed, err: err}
	}
}

func (m Model) createHabit(in ledger.HabitInput) tea.Cmd {
	svc, owner := m.svc, m.owner
	return func() tea.Msg {
		h, err := svc.CreateHabit(context.Background(), owner, in)
		return habitCreatedMsg{habit: h, err: err}
	}
}

func (m Model) deactivate(habitID string) tea.Cmd {
	svc, owner := m.svc, m.owner
	return func() tea.Msg {
		h, err := svc.DeactivateHabit(context.Background(), owner, habitID)
		return habitDeactivatedMsg{habit: h, err: err}
	}
}
