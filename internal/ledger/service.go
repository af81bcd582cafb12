// Package ledger is the entry point for every habit mutation and query.
//
// A mark or undo toggles the completion ledger, recomputes the habit's
// streak, applies the point delta and runs a reward evaluation pass, all in
// one storage unit of work. The service itself holds no state between calls.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/wellkept/internal/clock"
	"github.com/julianstephens/wellkept/internal/constants"
	apperrors "github.com/julianstephens/wellkept/internal/errors"
	"github.com/julianstephens/wellkept/internal/gamification"
	"github.com/julianstephens/wellkept/internal/logger"
	"github.com/julianstephens/wellkept/internal/models"
	"github.com/julianstephens/wellkept/internal/rules"
	"github.com/julianstephens/wellkept/internal/storage"
	"github.com/julianstephens/wellkept/internal/streak"
)

type Service struct {
	store    storage.Provider
	calendar *clock.Calendar
	catalog  *rules.Catalog
}

// ToggleResult is the outcome of a mark or undo
type ToggleResult struct {
	Habit    models.Habit            `json:"habit"`
	Record   models.CompletionRecord `json:"record"`
	Changed  bool                    `json:"changed"`
	Delta    int                     `json:"delta"`
	Streak   models.StreakState      `json:"streak"`
	Account  models.AccountSummary   `json:"account"`
	Unlocked []models.Reward         `json:"unlocked,omitempty"`
	LevelUp  bool                    `json:"level_up,omitempty"`
}

func NewService(store storage.Provider, calendar *clock.Calendar, catalog *rules.Catalog) *Service {
	if catalog == nil {
		catalog = &rules.Catalog{}
	}
	return &Service{
		store:    store,
		calendar: calendar,
		catalog:  catalog,
	}
}

// Today returns the current ledger day in the configured timezone
func (s *Service) Today() string {
	return s.calendar.Today()
}

// Catalog returns the reward catalog the service evaluates against
// Location is the timezone that decides where a day starts
func (s *Service) Location() *time.Location {
	return s.calendar.Location()
}

func (s *Service) Catalog() *rules.Catalog {
	return s.catalog
}

// MarkHabitDone records a completion for day and awards the habit's points
func (s *Service) MarkHabitDone(ctx context.Context, owner, habitID, day, note string) (ToggleResult, error) {
	return s.Toggle(ctx, owner, habitID, day, true, note)
}

// UndoHabitDone clears a completion and deducts the points frozen on it
func (s *Service) UndoHabitDone(ctx context.Context, owner, habitID, day string) (ToggleResult, error) {
	return s.Toggle(ctx, owner, habitID, day, false, "")
}

// Toggle sets the completed flag for (habit, day). Repeating a call is a
// no-op: only a real transition moves points or streaks.
func (s *Service) Toggle(ctx context.Context, owner, habitID, day string, completed bool, note string) (ToggleResult, error) {
	if day == "" {
		day = s.calendar.Today()
	}
	if err := s.calendar.ValidateDay(day); err != nil {
		return ToggleResult{}, err
	}
	today := s.calendar.Today()
	now := s.calendar.Now()

	var res ToggleResult
	err := s.store.WithinTx(ctx, func(tx storage.Provider) error {
		habit, err := ownedHabit(ctx, tx, owner, habitID)
		if err != nil {
			return err
		}
		if !habit.Active {
			return fmt.Errorf("%w: %s", apperrors.ErrHabitInactive, habit.Name)
		}
		res = ToggleResult{Habit: habit}

		change, err := tx.SetCompletion(ctx, models.CompletionRecord{
			HabitID:       habit.ID,
			Owner:         owner,
			Day:           day,
			Completed:     completed,
			PointsAwarded: habit.Points,
			Note:          note,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
		res.Record = change.Record
		res.Changed = change.Changed

		before, err := tx.GetAccount(ctx, owner)
		if err != nil {
			return err
		}
		acc := before

		if change.Changed {
			res.Delta = change.Record.PointsAwarded
			if !completed {
				res.Delta = -res.Delta
			}

			if res.Streak, err = recomputeStreak(ctx, tx, habit.ID, today, now); err != nil {
				return err
			}
			if acc, err = tx.ApplyAccountDelta(ctx, models.PointDelta{Owner: owner, Points: res.Delta, Day: day}, now); err != nil {
				return err
			}
		} else if res.Streak, err = currentStreak(ctx, tx, habit.ID, today); err != nil {
			return err
		}

		res.LevelUp = acc.Level() > before.Level()
		res.Account = gamification.Summarize(acc, today)

		res.Unlocked, err = s.evaluate(ctx, tx, owner, today)
		return err
	})
	if err != nil {
		return ToggleResult{}, err
	}

	if res.Changed {
		logger.Debug("Completion toggled",
			"owner", owner, "habit", res.Habit.Name, "day", day,
			"completed", completed, "delta", res.Delta, "total", res.Account.TotalPoints)
	}
	for _, r := range res.Unlocked {
		logger.Info("Reward unlocked", "owner", owner, "reward", r.ID)
	}
	return res, nil
}

// GetNewlyUnlockedRewards runs an evaluation pass and persists every reward
// that now qualifies. Re-running with unchanged state returns nothing.
func (s *Service) GetNewlyUnlockedRewards(ctx context.Context, owner string) ([]models.Reward, error) {
	today := s.calendar.Today()
	var unlocked []models.Reward
	err := s.store.WithinTx(ctx, func(tx storage.Provider) error {
		var err error
		unlocked, err = s.evaluate(ctx, tx, owner, today)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, r := range unlocked {
		logger.Info("Reward unlocked", "owner", owner, "reward", r.ID)
	}
	return unlocked, nil
}

func (s *Service) evaluate(ctx context.Context, p storage.Provider, owner, today string) ([]models.Reward, error) {
	snap, err := snapshot(ctx, p, owner, today)
	if err != nil {
		return nil, err
	}
	existing, err := p.ListUnlocks(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.calendar.Now()
	var unlocked []models.Reward
	for _, r := range rules.Evaluate(snap, s.catalog.Rewards, rules.UnlockedSet(existing)) {
		inserted, err := p.InsertUnlockIfAbsent(ctx, models.UnlockRecord{Owner: owner, RewardID: r.ID, UnlockedAt: now})
		if err != nil {
			return nil, err
		}
		if inserted {
			unlocked = append(unlocked, r)
		}
	}
	return unlocked, nil
}

// Snapshot returns the aggregates the reward rules are evaluated against
func (s *Service) Snapshot(ctx context.Context, owner string) (models.Snapshot, error) {
	return snapshot(ctx, s.store, owner, s.calendar.Today())
}

func snapshot(ctx context.Context, p storage.Provider, owner, today string) (models.Snapshot, error) {
	acc, err := p.GetAccount(ctx, owner)
	if err != nil {
		return models.Snapshot{}, err
	}
	acc = gamification.Normalize(acc, today)

	// Deactivated habits keep counting toward the best streak
	habits, err := p.ListHabits(ctx, owner)
	if err != nil {
		return models.Snapshot{}, err
	}

	best, active := 0, 0
	for _, h := range habits {
		if h.Active {
			active++
		}
		st, err := p.GetStreak(ctx, h.ID)
		if err != nil {
			return models.Snapshot{}, err
		}
		best = max(best, st.BestStreak)
	}

	done, err := p.CountCompletedOnDay(ctx, owner, today)
	if err != nil {
		return models.Snapshot{}, err
	}

	return models.Snapshot{
		Owner:                owner,
		TotalPoints:          acc.TotalPoints,
		BestStreak:           best,
		HabitsCompletedToday: done,
		WeeklyPoints:         acc.WeeklyPoints,
		CurrentLevel:         acc.Level(),
		HabitCount:           active,
	}, nil
}

// currentStreak derives the streak as of today from the full ledger.
// The stored best streak is the floor for the new best.
func currentStreak(ctx context.Context, p storage.Provider, habitID, today string) (models.StreakState, error) {
	records, err := p.ListCompletions(ctx, habitID, constants.EpochDay, today)
	if err != nil {
		return models.StreakState{}, err
	}
	prev, err := p.GetStreak(ctx, habitID)
	if err != nil {
		return models.StreakState{}, err
	}
	return streak.Compute(habitID, today, records, prev.BestStreak), nil
}

// recomputeStreak is currentStreak followed by a write to the streak cache
func recomputeStreak(ctx context.Context, p storage.Provider, habitID, today string, now time.Time) (models.StreakState, error) {
	st, err := currentStreak(ctx, p, habitID, today)
	if err != nil {
		return models.StreakState{}, err
	}
	st.UpdatedAt = now
	if err := p.SaveStreak(ctx, st); err != nil {
		return models.StreakState{}, err
	}
	return st, nil
}

func ownedHabit(ctx context.Context, p storage.Provider, owner, habitID string) (models.Habit, error) {
	h, err := p.GetHabit(ctx, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if h.Owner != owner {
		return models.Habit{}, fmt.Errorf("habit %s: %w", habitID, apperrors.ErrNotFound)
	}
	return h, nil
}
