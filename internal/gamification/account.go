// Package gamification holds the point and level math for owner accounts.
// Storage backends apply the same rules atomically; Apply is the reference.
package gamification

import (
	"github.com/julianstephens/wellkept/internal/clock"
	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/models"
)

// Apply returns the account after one signed point delta.
//
// Totals are clamped at zero. The weekly and monthly counters follow the
// window of the delta's ledger day: same window adjusts the counter, a newer
// window restarts it, an older window leaves it alone.
func Apply(acc models.Account, delta models.PointDelta) models.Account {
	acc.Owner = delta.Owner
	acc.TotalPoints = clamp(acc.TotalPoints + delta.Points)

	acc.WeeklyPoints, acc.WeekStart = applyWindow(acc.WeeklyPoints, acc.WeekStart, clock.WeekStart(delta.Day), delta.Points)
	acc.MonthlyPoints, acc.MonthStart = applyWindow(acc.MonthlyPoints, acc.MonthStart, clock.MonthStart(delta.Day), delta.Points)
	return acc
}

func applyWindow(points int, stored, window string, delta int) (int, string) {
	switch {
	case stored == window:
		return clamp(points + delta), stored
	case stored < window:
		return clamp(delta), window
	default:
		return points, stored
	}
}

// Normalize zeroes rolling windows that are no longer current as of today
func Normalize(acc models.Account, today string) models.Account {
	if acc.WeekStart != clock.WeekStart(today) {
		acc.WeeklyPoints = 0
	}
	if acc.MonthStart != clock.MonthStart(today) {
		acc.MonthlyPoints = 0
	}
	return acc
}

// PointsToNextLevel returns how many points are missing for the next level
func PointsToNextLevel(totalPoints int) int {
	return models.LevelFor(totalPoints)*constants.PointsPerLevel - clamp(totalPoints)
}

// Summarize builds the display summary for an account as of today
func Summarize(acc models.Account, today string) models.AccountSummary {
	acc = Normalize(acc, today)
	return models.AccountSummary{
		Owner:         acc.Owner,
		TotalPoints:   acc.TotalPoints,
		CurrentLevel:  acc.Level(),
		WeeklyPoints:  acc.WeeklyPoints,
		MonthlyPoints: acc.MonthlyPoints,
		PointsToNext:  PointsToNextLevel(acc.TotalPoints),
	}
}

func clamp(points int) int {
	if points < 0 {
		return 0
	}
	return points
}
