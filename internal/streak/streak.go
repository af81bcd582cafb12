// Package streak derives consecutive-day statistics from a habit's completion ledger.
package streak

import (
	"sort"

	"github.com/julianstephens/wellkept/internal/clock"
	"github.com/julianstephens/wellkept/internal/models"
)

// Compute derives the streak state for one habit.
//
// records may contain undone rows and rows for other days in any order; only
// completed rows count. previousBest is the best streak stored before this call
// and acts as a floor, so the result never decreases.
func Compute(habitID, today string, records []models.CompletionRecord, previousBest int) models.StreakState {
	done := completedDays(records)

	state := models.StreakState{
		HabitID:          habitID,
		CurrentStreak:    Current(today, done),
		TotalCompletions: len(done),
	}

	days := sortedDays(done)
	if len(days) > 0 {
		state.LastCompletedDay = days[len(days)-1]
	}

	state.BestStreak = max(LongestRun(days), previousBest, state.CurrentStreak)
	return state
}

// Current counts consecutive completed days ending today. An open today
// (no completion yet) does not break the streak: counting starts at yesterday.
func Current(today string, done map[string]bool) int {
	day := today
	if !done[day] {
		day = clock.AddDays(today, -1)
	}

	count := 0
	for done[day] {
		count++
		day = clock.AddDays(day, -1)
	}
	return count
}

// LongestRun returns the longest run of consecutive days in an ascending list
func LongestRun(days []string) int {
	best, run := 0, 0
	prev := ""
	for _, day := range days {
		if prev != "" && clock.AddDays(prev, 1) == day {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
		prev = day
	}
	return best
}

func completedDays(records []models.CompletionRecord) map[string]bool {
	done := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Completed {
			done[r.Day] = true
		}
	}
	return done
}

func sortedDays(done map[string]bool) []string {
	days := make([]string, 0, len(done))
	for day := range done {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
