package ledger

import (
	"context"
	"time"

	"github.com/julianstephens/wellkept/internal/clock"
	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/gamification"
	"github.com/julianstephens/wellkept/internal/logger"
	"github.com/julianstephens/wellkept/internal/models"
	"github.com/julianstephens/wellkept/internal/rules"
	"github.com/julianstephens/wellkept/internal/streak"
)

// HabitStats is the streak view of one habit as of today
type HabitStats struct {
	Habit            models.Habit `json:"habit"`
	CurrentStreak    int          `json:"current_streak"`
	BestStreak       int          `json:"best_streak"`
	TotalCompletions int          `json:"total_completions"`
	LastCompletedDay string       `json:"last_completed_day,omitempty"`
	DoneToday        bool         `json:"done_today"`
}

// DayMark is one cell of a habit log
type DayMark struct {
	Day       string `json:"day"`
	Completed bool   `json:"completed"`
	Note      string `json:"note,omitempty"`
}

// RewardStatus pairs a catalog reward with the owner's progress toward it
type RewardStatus struct {
	Reward     models.Reward `json:"reward"`
	Unlocked   bool          `json:"unlocked"`
	UnlockedAt *time.Time    `json:"unlocked_at,omitempty"`
	Current    int           `json:"current"`
	Progress   float64       `json:"progress"`
}

// Drift compares the stored point total with the sum of frozen points on
// currently completed records
type Drift struct {
	Owner    string `json:"owner"`
	Stored   int    `json:"stored"`
	Expected int    `json:"expected"`
}

func (d Drift) OK() bool {
	return d.Stored == d.Expected
}

// GetHabitStats recomputes the streak from the ledger. Works for inactive habits too.
func (s *Service) GetHabitStats(ctx context.Context, owner, habitID string) (HabitStats, error) {
	h, err := ownedHabit(ctx, s.store, owner, habitID)
	if err != nil {
		return HabitStats{}, err
	}

	today := s.calendar.Today()
	records, err := s.store.ListCompletions(ctx, h.ID, constants.EpochDay, today)
	if err != nil {
		return HabitStats{}, err
	}
	cached, err := s.store.GetStreak(ctx, h.ID)
	if err != nil {
		return HabitStats{}, err
	}

	st := streak.Compute(h.ID, today, records, cached.BestStreak)
	stats := HabitStats{
		Habit:            h,
		CurrentStreak:    st.CurrentStreak,
		BestStreak:       st.BestStreak,
		TotalCompletions: st.TotalCompletions,
		LastCompletedDay: st.LastCompletedDay,
	}
	for _, r := range records {
		if r.Day == today && r.Completed {
			stats.DoneToday = true
		}
	}
	return stats, nil
}

// ListHabitStats returns stats for every active habit
func (s *Service) ListHabitStats(ctx context.Context, owner string) ([]HabitStats, error) {
	habits, err := s.store.ListActiveHabits(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]HabitStats, 0, len(habits))
	for _, h := range habits {
		st, err := s.GetHabitStats(ctx, owner, h.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// GetAccountSummary returns points, level and counters as of today
func (s *Service) GetAccountSummary(ctx context.Context, owner string) (models.AccountSummary, error) {
	acc, err := s.store.GetAccount(ctx, owner)
	if err != nil {
		return models.AccountSummary{}, err
	}
	today := s.calendar.Today()
	sum := gamification.Summarize(acc, today)
	sum.Owner = owner

	unlocks, err := s.store.ListUnlocks(ctx, owner)
	if err != nil {
		return models.AccountSummary{}, err
	}
	sum.UnlockedCount = len(unlocks)

	habits, err := s.store.ListActiveHabits(ctx, owner)
	if err != nil {
		return models.AccountSummary{}, err
	}
	sum.ActiveHabits = len(habits)

	if sum.CompletedToday, err = s.store.CountCompletedOnDay(ctx, owner, today); err != nil {
		return models.AccountSummary{}, err
	}
	return sum, nil
}

// ListUnlockedRewards returns the owner's earned rewards in unlock order.
// Unlocks whose reward left the catalog are reported by id only.
func (s *Service) ListUnlockedRewards(ctx context.Context, owner string) ([]RewardStatus, error) {
	unlocks, err := s.store.ListUnlocks(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]RewardStatus, 0, len(unlocks))
	for _, u := range unlocks {
		r, ok := s.catalog.Lookup(u.RewardID)
		if !ok {
			r = models.Reward{ID: u.RewardID, Kind: constants.RewardBadge, Name: u.RewardID}
		}
		at := u.UnlockedAt
		out = append(out, RewardStatus{Reward: r, Unlocked: true, UnlockedAt: &at, Progress: 1})
	}
	return out, nil
}

// RewardProgress returns every catalog reward with the owner's progress
func (s *Service) RewardProgress(ctx context.Context, owner string) ([]RewardStatus, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.store.ListUnlocks(ctx, owner)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.RewardID] = u.UnlockedAt
	}

	out := make([]RewardStatus, 0, len(s.catalog.Rewards))
	for _, r := range s.catalog.Rewards {
		current, progress := rules.Progress(r, snap)
		rs := RewardStatus{Reward: r, Current: current, Progress: progress}
		if at, ok := unlockedAt[r.ID]; ok {
			rs.Unlocked = true
			rs.UnlockedAt = &at
			rs.Progress = 1
		}
		out = append(out, rs)
	}
	return out, nil
}

// HabitLog returns one mark per day for the last n days, oldest first
func (s *Service) HabitLog(ctx context.Context, owner, habitID string, days int) ([]DayMark, error) {
	h, err := ownedHabit(ctx, s.store, owner, habitID)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = constants.DefaultLogDays
	}

	today := s.calendar.Today()
	from := clock.AddDays(today, -(days - 1))
	records, err := s.store.ListCompletions(ctx, h.ID, from, today)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]models.CompletionRecord, len(records))
	for _, r := range records {
		byDay[r.Day] = r
	}

	var out []DayMark
	for _, day := range clock.Range(from, today) {
		r := byDay[day]
		out = append(out, DayMark{Day: day, Completed: r.Completed, Note: r.Note})
	}
	return out, nil
}

// VerifyAccount checks that the stored total equals the sum of frozen
// points over currently completed records.
func (s *Service) VerifyAccount(ctx context.Context, owner string) (Drift, error) {
	acc, err := s.store.GetAccount(ctx, owner)
	if err != nil {
		return Drift{}, err
	}
	expected, err := s.store.SumCompletedPoints(ctx, owner)
	if err != nil {
		return Drift{}, err
	}
	d := Drift{Owner: owner, Stored: acc.TotalPoints, Expected: expected}
	if !d.OK() {
		logger.Warn("Account drift detected", "owner", owner, "stored", d.Stored, "expected", d.Expected)
	}
	return d, nil
}

// ParseDay validates a user-supplied day, defaulting to today. Relative
// forms "today" and "yesterday" are accepted.
func (s *Service) ParseDay(input string) (string, error) {
	today := s.calendar.Today()
	switch input {
	case "", "today":
		return today, nil
	case "yesterday":
		return clock.AddDays(today, -1), nil
	}
	if err := s.calendar.ValidateDay(input); err != nil {
		return "", err
	}
	return input, nil
}
