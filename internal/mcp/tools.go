package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/models"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_habits",
		Description: "List the owner's habits with today's status and current streak",
	}, s.handleListHabits)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_habit",
		Description: "Create a new habit worth a fixed number of points per completion",
	}, s.handleCreateHabit)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mark_habit_done",
		Description: "Mark a habit as completed for a day. Repeating the call changes nothing.",
	}, s.handleMarkHabitDone)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "undo_habit_done",
		Description: "Clear a habit completion for a day and deduct the points it awarded",
	}, s.handleUndoHabitDone)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_habit_stats",
		Description: "Get current streak, best streak and total completions for a habit",
	}, s.handleGetHabitStats)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "deactivate_habit",
		Description: "Deactivate a habit. Its history stays readable.",
	}, s.handleDeactivateHabit)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_account_summary",
		Description: "Get total, weekly and monthly points, level and progress to the next level",
	}, s.handleGetAccountSummary)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_rewards",
		Description: "List unlocked badges and achievements, or every reward with progress",
	}, s.handleListRewards)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "check_rewards",
		Description: "Evaluate reward rules and return any newly unlocked rewards",
	}, s.handleCheckRewards)
}

// Tool input/output types

type listHabitsInput struct {
	IncludeInactive bool `json:"include_inactive,omitempty" jsonschema:"Also list deactivated habits"`
}

type createHabitInput struct {
	Name        string `json:"name" jsonschema:"Habit name"`
	Description string `json:"description,omitempty" jsonschema:"Optional description"`
	Category    string `json:"category,omitempty" jsonschema:"Category label (default general)"`
	Points      int    `json:"points,omitempty" jsonschema:"Points per completion (default 10)"`
}

type toggleInput struct {
	Habit string `json:"habit" jsonschema:"Habit id or name"`
	Day   string `json:"day,omitempty" jsonschema:"Day as YYYY-MM-DD, today or yesterday (default today)"`
	Note  string `json:"note,omitempty" jsonschema:"Optional note, only used when marking"`
}

type habitInput struct {
	Habit string `json:"habit" jsonschema:"Habit id or name"`
}

type listRewardsInput struct {
	All bool `json:"all,omitempty" jsonschema:"Include locked rewards with progress"`
}

type emptyInput struct{}

type toggleOutput struct {
	Message string              `json:"message"`
	Result  ledger.ToggleResult `json:"result"`
}

// Tool handlers

func (s *Server) handleListHabits(ctx context.Context, req *mcp.CallToolRequest, input listHabitsInput) (*mcp.CallToolResult, any, error) {
	stats, err := s.svc.ListHabitStats(ctx, s.owner)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list habits: %w", err)
	}

	if input.IncludeInactive {
		all, err := s.svc.ListHabits(ctx, s.owner)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list habits: %w", err)
		}
		for _, h := range all {
			if h.Active {
				continue
			}
			st, err := s.svc.GetHabitStats(ctx, s.owner, h.ID)
			if err != nil {
				return nil, nil, err
			}
			stats = append(stats, st)
		}
	}

	if len(stats) == 0 {
		return nil, map[string]any{"message": "No habits found."}, nil
	}
	return nil, map[string]any{"today": s.svc.Today(), "habits": stats}, nil
}

func (s *Server) handleCreateHabit(ctx context.Context, req *mcp.CallToolRequest, input createHabitInput) (*mcp.CallToolResult, any, error) {
	h, err := s.svc.CreateHabit(ctx, s.owner, ledger.HabitInput{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Points:      input.Points,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create habit: %w", err)
	}
	return nil, map[string]any{
		"habit":   h,
		"message": fmt.Sprintf("Created habit %s worth %d points (ID: %s)", h.Name, h.Points, h.ID),
	}, nil
}

func (s *Server) handleMarkHabitDone(ctx context.Context, req *mcp.CallToolRequest, input toggleInput) (*mcp.CallToolResult, any, error) {
	return s.toggle(ctx, input, true)
}

func (s *Server) handleUndoHabitDone(ctx context.Context, req *mcp.CallToolRequest, input toggleInput) (*mcp.CallToolResult, any, error) {
	return s.toggle(ctx, input, false)
}

func (s *Server) toggle(ctx context.Context, input toggleInput, completed bool) (*mcp.CallToolResult, any, error) {
	day, err := s.svc.ParseDay(input.Day)
	if err != nil {
		return nil, nil, err
	}
	h, err := s.svc.FindHabit(ctx, s.owner, input.Habit)
	if err != nil {
		return nil, nil, err
	}

	note := ""
	if completed {
		note = input.Note
	}
	res, err := s.svc.Toggle(ctx, s.owner, h.ID, day, completed, note)
	if err != nil {
		return nil, nil, err
	}
	return nil, toggleOutput{Message: describeToggle(res, completed), Result: res}, nil
}

func describeToggle(res ledger.ToggleResult, completed bool) string {
	verb := "undone"
	if completed {
		verb = "done"
	}
	if !res.Changed {
		return fmt.Sprintf("%s was already %s for %s", res.Habit.Name, verb, res.Record.Day)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s for %s (%+d points). Streak %d, total %d points, level %d.",
		res.Habit.Name, verb, res.Record.Day, res.Delta, res.Streak.CurrentStreak, res.Account.TotalPoints, res.Account.CurrentLevel)
	if res.LevelUp {
		fmt.Fprintf(&b, " Level up to %d!", res.Account.CurrentLevel)
	}
	for _, r := range res.Unlocked {
		fmt.Fprintf(&b, " Unlocked %s %q.", r.Kind, r.Name)
	}
	return b.String()
}

func (s *Server) handleGetHabitStats(ctx context.Context, req *mcp.CallToolRequest, input habitInput) (*mcp.CallToolResult, any, error) {
	h, err := s.svc.FindHabit(ctx, s.owner, input.Habit)
	if err != nil {
		return nil, nil, err
	}
	st, err := s.svc.GetHabitStats(ctx, s.owner, h.ID)
	if err != nil {
		return nil, nil, err
	}
	return nil, st, nil
}

func (s *Server) handleDeactivateHabit(ctx context.Context, req *mcp.CallToolRequest, input habitInput) (*mcp.CallToolResult, any, error) {
	h, err := s.svc.FindHabit(ctx, s.owner, input.Habit)
	if err != nil {
		return nil, nil, err
	}
	if h, err = s.svc.DeactivateHabit(ctx, s.owner, h.ID); err != nil {
		return nil, nil, err
	}
	return nil, map[string]any{"habit": h, "message": fmt.Sprintf("Deactivated habit: %s", h.Name)}, nil
}

func (s *Server) handleGetAccountSummary(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	sum, err := s.svc.GetAccountSummary(ctx, s.owner)
	if err != nil {
		return nil, nil, err
	}
	return nil, sum, nil
}

func (s *Server) handleListRewards(ctx context.Context, req *mcp.CallToolRequest, input listRewardsInput) (*mcp.CallToolResult, any, error) {
	var (
		list []ledger.RewardStatus
		err  error
	)
	if input.All {
		list, err = s.svc.RewardProgress(ctx, s.owner)
	} else {
		list, err = s.svc.ListUnlockedRewards(ctx, s.owner)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(list) == 0 {
		return nil, map[string]any{"message": "No rewards unlocked yet."}, nil
	}
	return nil, map[string]any{"rewards": list}, nil
}

func (s *Server) handleCheckRewards(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	unlocked, err := s.svc.GetNewlyUnlockedRewards(ctx, s.owner)
	if err != nil {
		return nil, nil, err
	}
	if unlocked == nil {
		unlocked = []models.Reward{}
	}
	return nil, map[string]any{"unlocked": unlocked}, nil
}
