package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/tui/components/habits"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.habitsModel.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case refreshMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.habitsModel.SetHabits(msg.stats)
		m.account = msg.account
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.toast = toastFor(msg.result, msg.completed)
		return m, m.refresh()

	case habitCreatedMsg:
		m.state = constants.StateHabits
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.toast = fmt.Sprintf("Added habit %s (+%d pts)", msg.habit.Name, msg.habit.Points)
		return m, m.refresh()

	case habitDeactivatedMsg:
		m.state = constants.StateHabits
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.toast = fmt.Sprintf("Deactivated %s", msg.habit.Name)
		return m, m.refresh()

	case habits.AddHabitMsg:
		m.habitForm = &HabitFormModel{
			Category: constants.DefaultCategory,
			Points:   strconv.Itoa(constants.DefaultHabitPoints),
		}
		m.form = NewHabitForm(m.habitForm)
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habits.MarkHabitMsg:
		return m, m.toggle(msg.ID, true)

	case habits.UnmarkHabitMsg:
		return m, m.toggle(msg.ID, false)

	case habits.DeactivateHabitMsg:
		m.habitToDeactivate = msg
		m.state = constants.StateConfirmDeactivate
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit:
		return m.updateAddHabit(msg)
	case constants.StateConfirmDeactivate:
		return m.updateConfirmDeactivate(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if !m.habitsModel.Filtering() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.quitting = true
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			case key.Matches(msg, m.keys.Refresh):
				m.toast, m.errMsg = "", ""
				return m, m.refresh()
			}
		}
	}

	var cmd tea.Cmd
	m.habitsModel, cmd = m.habitsModel.Update(msg)
	return m, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateHabits
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = constants.StateHabits
		cmds = append(cmds, m.createHabit(m.habitForm.input()))
	case huh.StateAborted:
		m.state = constants.StateHabits
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDeactivate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		return m, m.deactivate(m.habitToDeactivate.ID)
	case "n", "N", "esc":
		m.state = constants.StateHabits
		m.habitToDeactivate = habits.DeactivateHabitMsg{}
	}
	return m, nil
}

func toastFor(res ledger.ToggleResult, completed bool) string {
	if !res.Changed {
		if completed {
			return res.Habit.Name + " is already done today"
		}
		return res.Habit.Name + " was not done today"
	}

	var b strings.Builder
	if completed {
		fmt.Fprintf(&b, "✓ %s (%+d pts, streak %d)", res.Habit.Name, res.Delta, res.Streak.CurrentStreak)
	} else {
		fmt.Fprintf(&b, "↺ %s undone (%+d pts)", res.Habit.Name, res.Delta)
	}
	if res.LevelUp {
		fmt.Fprintf(&b, "  ⬆ Level %d!", res.Account.CurrentLevel)
	}
	for _, r := range res.Unlocked {
		fmt.Fprintf(&b, "  🎉 %s %s", r.Icon, r.Name)
	}
	return b.String()
}
