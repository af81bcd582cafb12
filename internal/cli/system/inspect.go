package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/constants"
)

type InspectCmd struct {
	DBPath  *InspectDBPathCmd  `cmd:"" help:"Show database path."`
	Habit   *InspectHabitCmd   `cmd:"" help:"Dump a habit with its ledger and streak cache as JSON."`
	Account *InspectAccountCmd `cmd:"" help:"Dump the stored account row and unlocks as JSON."`
}

type InspectDBPathCmd struct{}

func (cmd *InspectDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type InspectHabitCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (cmd *InspectHabitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	h, err := ctx.Service.FindHabit(bg, ctx.Owner, cmd.Habit)
	if err != nil {
		return err
	}

	records, err := ctx.Store.ListCompletions(bg, h.ID, constants.EpochDay, ctx.Service.Today())
	if err != nil {
		return fmt.Errorf("failed to list completions: %w", err)
	}
	streak, err := ctx.Store.GetStreak(bg, h.ID)
	if err != nil {
		return fmt.Errorf("failed to get streak cache: %w", err)
	}

	return printJSON(ctx, map[string]any{
		"habit":       h,
		"completions": records,
		"streak":      streak,
	})
}

type InspectAccountCmd struct{}

func (cmd *InspectAccountCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	// Raw row, without the lazy window reset applied on reads
	acc, err := ctx.Store.GetAccount(bg, ctx.Owner)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	unlocks, err := ctx.Store.ListUnlocks(bg, ctx.Owner)
	if err != nil {
		return fmt.Errorf("failed to list unlocks: %w", err)
	}
	return printJSON(ctx, map[string]any{"account": acc, "unlocks": unlocks})
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
