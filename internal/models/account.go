package models

import (
	"time"

	"github.com/julianstephens/wellkept/internal/constants"
)

// Account is the per-owner gamification aggregate.
// The level is never stored; see Level.
type Account struct {
	Owner         string    `json:"owner"`
	TotalPoints   int       `json:"total_points"`
	WeeklyPoints  int       `json:"weekly_points"`
	MonthlyPoints int       `json:"monthly_points"`
	WeekStart     string    `json:"week_start,omitempty"`  // window the weekly counter belongs to
	MonthStart    string    `json:"month_start,omitempty"` // window the monthly counter belongs to
	UpdatedAt     time.Time `json:"updated_at"`
}

// LevelFor computes the level for a point total
func LevelFor(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return totalPoints/constants.PointsPerLevel + 1
}

// Level returns the current level derived from TotalPoints
func (a Account) Level() int {
	return LevelFor(a.TotalPoints)
}

// PointDelta is one signed change to an owner's account.
// Day is the ledger day that produced the change; it selects the rolling windows.
type PointDelta struct {
	Owner  string `json:"owner"`
	Points int    `json:"points"`
	Day    string `json:"day"`
}

// AccountSummary is what callers display
type AccountSummary struct {
	Owner          string `json:"owner"`
	TotalPoints    int    `json:"total_points"`
	CurrentLevel   int    `json:"current_level"`
	WeeklyPoints   int    `json:"weekly_points"`
	MonthlyPoints  int    `json:"monthly_points"`
	PointsToNext   int    `json:"points_to_next_level"`
	UnlockedCount  int    `json:"unlocked_count"`
	ActiveHabits   int    `json:"active_habits"`
	CompletedToday int    `json:"completed_today"`
}
