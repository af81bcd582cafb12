package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	p := tea.NewProgram(tui.NewModel(ctx.Service, ctx.Owner), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
