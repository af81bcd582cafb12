package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/models"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Add a new habit."`
	List       HabitListCmd       `cmd:"" help:"List habits."`
	Today      HabitTodayCmd      `cmd:"" help:"Show today's checklist."`
	Done       HabitDoneCmd       `cmd:"" help:"Mark a habit as done for a day."`
	Undo       HabitUndoCmd       `cmd:"" help:"Clear a habit completion for a day."`
	Stats      HabitStatsCmd      `cmd:"" help:"Show streak statistics for a habit."`
	Log        HabitLogCmd        `cmd:"" help:"Show habit log (ASCII history)."`
	Deactivate HabitDeactivateCmd `cmd:"" help:"Deactivate a habit. History is kept."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Points      int    `help:"Points awarded per completion." default:"10"`
	Category    string `help:"Category label." default:"general"`
	Description string `help:"Optional description."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Service.CreateHabit(context.Background(), ctx.Owner, ledger.HabitInput{
		Name:        c.Name,
		Description: c.Description,
		Category:    c.Category,
		Points:      c.Points,
	})
	if err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("Added habit: %s (%d points)", h.Name, h.Points)))
	return nil
}

type HabitListCmd struct {
	All bool `help:"Include deactivated habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habits, err := ctx.Service.ListActiveHabits(bg, ctx.Owner)
	if c.All {
		habits, err = ctx.Service.ListHabits(bg, ctx.Owner)
	}
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		status := ""
		if !h.Active {
			status = cli.MutedStyle.Render(" [INACTIVE]")
		}
		ctx.Printf("%s %s%s\n", cli.Truncate(h.Name, 24), cli.MutedStyle.Render(fmt.Sprintf("%4d pts  %s", h.Points, h.Category)), status)
	}
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	stats, err := ctx.Service.ListHabitStats(context.Background(), ctx.Owner)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	ctx.Println(cli.TitleStyle.Render("Habits for " + ctx.Service.Today()))
	ctx.Println()
	done := 0
	for _, st := range stats {
		box := "[ ]"
		if st.DoneToday {
			box = cli.SuccessStyle.Render("[x]")
			done++
		}
		ctx.Printf("%s %s %s\n", box, cli.Truncate(st.Habit.Name, 24), cli.MutedStyle.Render(fmt.Sprintf("🔥 %d", st.CurrentStreak)))
	}
	ctx.Printf("\nRecorded: %d/%d\n", done, len(stats))
	return nil
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Day in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
	Note  string `help:"Optional note for this entry."`
}

func (c *HabitDoneCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	day, err := ctx.Service.ParseDay(c.Date)
	if err != nil {
		return err
	}
	h, err := ctx.Service.FindHabit(bg, ctx.Owner, c.Habit)
	if err != nil {
		return err
	}
	res, err := ctx.Service.MarkHabitDone(bg, ctx.Owner, h.ID, day, c.Note)
	if err != nil {
		return err
	}
	ctx.PrintToggle(res, "done")
	return nil
}

type HabitUndoCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Day in YYYY-MM-DD format, 'today' or 'yesterday'." default:"today"`
}

func (c *HabitUndoCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	day, err := ctx.Service.ParseDay(c.Date)
	if err != nil {
		return err
	}
	h, err := ctx.Service.FindHabit(bg, ctx.Owner, c.Habit)
	if err != nil {
		return err
	}
	res, err := ctx.Service.UndoHabitDone(bg, ctx.Owner, h.ID, day)
	if err != nil {
		return err
	}
	ctx.PrintToggle(res, "undone")
	return nil
}

type HabitStatsCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitStatsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	h, err := ctx.Service.FindHabit(bg, ctx.Owner, c.Habit)
	if err != nil {
		return err
	}
	st, err := ctx.Service.GetHabitStats(bg, ctx.Owner, h.ID)
	if err != nil {
		return err
	}

	title := st.Habit.Name
	if !st.Habit.Active {
		title += " (inactive)"
	}
	ctx.Println(cli.TitleStyle.Render(title))
	ctx.Printf("  Current streak:    %d\n", st.CurrentStreak)
	ctx.Printf("  Best streak:       %d\n", st.BestStreak)
	ctx.Printf("  Total completions: %d\n", st.TotalCompletions)
	last := st.LastCompletedDay
	if last == "" {
		last = "never"
	}
	ctx.Printf("  Last completed:    %s\n", last)
	ctx.Printf("  Points each:       %d\n", st.Habit.Points)
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for a specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if c.Days <= 0 {
		c.Days = constants.DefaultLogDays
	}

	habits, err := ctx.Service.ListActiveHabits(bg, ctx.Owner)
	if err != nil {
		return err
	}
	if c.Habit != "" {
		h, err := ctx.Service.FindHabit(bg, ctx.Owner, c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	const nameWidth = 20
	ctx.Printf("Habit log (last %d days):\n\n", c.Days)

	var header strings.Builder
	header.WriteString(strings.Repeat(" ", nameWidth))
	rows := make([]string, 0, len(habits))
	for i, h := range habits {
		marks, err := ctx.Service.HabitLog(bg, ctx.Owner, h.ID, c.Days)
		if err != nil {
			return err
		}
		var row strings.Builder
		row.WriteString(cli.Truncate(h.Name, nameWidth))
		for _, m := range marks {
			if i == 0 {
				fmt.Fprintf(&header, " %5s", m.Day[5:])
			}
			if m.Completed {
				row.WriteString(cli.SuccessStyle.Render("     x"))
			} else {
				row.WriteString(cli.MutedStyle.Render("     ."))
			}
		}
		rows = append(rows, row.String())
	}

	ctx.Println(header.String())
	ctx.Println(strings.Repeat("-", nameWidth+6*c.Days))
	for _, r := range rows {
		ctx.Println(r)
	}
	return nil
}

type HabitDeactivateCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitDeactivateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	h, err := ctx.Service.FindHabit(bg, ctx.Owner, c.Habit)
	if err != nil {
		return err
	}
	if _, err := ctx.Service.DeactivateHabit(bg, ctx.Owner, h.ID); err != nil {
		return err
	}
	ctx.Printf("Deactivated habit: %s\n", h.Name)
	ctx.Println(cli.MutedStyle.Render("(Completions and streaks stay readable with 'wellkept habit stats')"))
	return nil
}
