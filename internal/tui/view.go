package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateHabits:
		content = docStyle.Render(m.habitsModel.View())
	case constants.StateAddHabit:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDeactivate:
		content = m.viewConfirmDeactivate()
	}

	var status string
	switch {
	case m.errMsg != "":
		status = dangerStyle.Render("Error: " + m.errMsg)
	case m.toast != "":
		status = toastStyle.Render(m.toast)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		status,
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	a := m.account
	fraction := float64(constants.PointsPerLevel-a.PointsToNext) / float64(constants.PointsPerLevel)
	level := fmt.Sprintf("Level %d %s %d pts", a.CurrentLevel, cli.ProgressBar(fraction, 20), a.TotalPoints)
	window := mutedStyle.Render(fmt.Sprintf("week %d · month %d · %d/%d done today",
		a.WeeklyPoints, a.MonthlyPoints, a.CompletedToday, a.ActiveHabits))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render(constants.AppName+" · "+m.svc.Today()),
		"  ", level, "  ", window,
	)
}

func (m Model) viewConfirmDeactivate() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			warningStyle.Render(fmt.Sprintf("Deactivate %q? Its history stays, but it leaves today's list.", m.habitToDeactivate.Name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
