package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/models"
	"github.com/julianstephens/wellkept/internal/storage"
)

// Context is handed to every command's Run method
type Context struct {
	Store   storage.Provider
	Service *ledger.Service
	Owner   string
	Out     io.Writer
}

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	RewardStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes to the command output
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line to the command output
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// PrintRewards announces newly unlocked rewards
func (c *Context) PrintRewards(rewards []models.Reward) {
	for _, r := range rewards {
		c.Println(RewardStyle.Render(fmt.Sprintf("🎉 Unlocked %s: %s %s", r.Kind, r.Icon, r.Name)))
	}
}

// PrintToggle reports the outcome of a mark or undo
func (c *Context) PrintToggle(res ledger.ToggleResult, verb string) {
	if !res.Changed {
		c.Println(MutedStyle.Render(fmt.Sprintf("%s was already %s for %s", res.Habit.Name, verb, res.Record.Day)))
	} else {
		c.Println(SuccessStyle.Render(fmt.Sprintf("✓ %s %s for %s (%+d points)", res.Habit.Name, verb, res.Record.Day, res.Delta)))
	}
	c.Printf("  Streak: %d (best %d)   Points: %d   Level: %d\n",
		res.Streak.CurrentStreak, res.Streak.BestStreak, res.Account.TotalPoints, res.Account.CurrentLevel)
	if res.LevelUp {
		c.Println(RewardStyle.Render(fmt.Sprintf("⬆ Level up! You reached level %d", res.Account.CurrentLevel)))
	}
	c.PrintRewards(res.Unlocked)
}

// ProgressBar renders a fixed-width bar for a fraction in [0,1]
func ProgressBar(fraction float64, width int) string {
	fraction = max(0, min(1, fraction))
	filled := int(fraction * float64(width))
	return SuccessStyle.Render(strings.Repeat("█", filled)) + MutedStyle.Render(strings.Repeat("░", width-filled))
}

// Truncate pads or shortens name to exactly width runes
func Truncate(name string, width int) string {
	r := []rune(name)
	if len(r) > width {
		if width >= 5 {
			return string(r[:width-3]) + "..."
		}
		return string(r[:width])
	}
	return name + strings.Repeat(" ", width-len(r))
}
