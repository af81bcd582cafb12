package streak

import (
	"testing"

	"github.com/julianstephens/wellkept/internal/clock"
	"github.com/julianstephens/wellkept/internal/models"
)

const today = "2025-06-15"

func records(days ...string) []models.CompletionRecord {
	var out []models.CompletionRecord
	for _, d := range days {
		out = append(out, models.CompletionRecord{HabitID: "h1", Day: d, Completed: true, PointsAwarded: 10})
	}
	return out
}

func daysAgo(n int) string {
	return clock.AddDays(today, -n)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		records      []models.CompletionRecord
		previousBest int
		wantCurrent  int
		wantBest     int
		wantTotal    int
	}{
		{
			name:        "empty ledger",
			records:     nil,
			wantCurrent: 0,
			wantBest:    0,
			wantTotal:   0,
		},
		{
			name:        "three days including today",
			records:     records(daysAgo(2), daysAgo(1), today),
			wantCurrent: 3,
			wantBest:    3,
			wantTotal:   3,
		},
		{
			name:        "today still open does not break the streak",
			records:     records(daysAgo(2), daysAgo(1)),
			wantCurrent: 2,
			wantBest:    2,
			wantTotal:   2,
		},
		{
			name:        "missed yesterday breaks the streak",
			records:     records(daysAgo(3), daysAgo(2)),
			wantCurrent: 0,
			wantBest:    2,
			wantTotal:   2,
		},
		{
			name:        "gap inside history",
			records:     records(daysAgo(10), daysAgo(9), daysAgo(8), daysAgo(7), daysAgo(1), today),
			wantCurrent: 2,
			wantBest:    4,
			wantTotal:   6,
		},
		{
			name:         "previous best acts as a floor",
			records:      records(today),
			previousBest: 9,
			wantCurrent:  1,
			wantBest:     9,
			wantTotal:    1,
		},
		{
			name:         "empty ledger keeps previous best",
			records:      nil,
			previousBest: 5,
			wantCurrent:  0,
			wantBest:     5,
			wantTotal:    0,
		},
		{
			name: "undone rows are ignored",
			records: append(records(daysAgo(2), today), models.CompletionRecord{
				HabitID: "h1", Day: daysAgo(1), Completed: false, PointsAwarded: 10,
			}),
			wantCurrent: 1,
			wantBest:    1,
			wantTotal:   2,
		},
		{
			name:        "unordered input",
			records:     records(today, daysAgo(2), daysAgo(1)),
			wantCurrent: 3,
			wantBest:    3,
			wantTotal:   3,
		},
		{
			name:        "streak across month boundary",
			records:     records("2025-05-30", "2025-05-31", "2025-06-01"),
			wantCurrent: 0,
			wantBest:    3,
			wantTotal:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute("h1", today, tt.records, tt.previousBest)
			if got.CurrentStreak != tt.wantCurrent {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantCurrent)
			}
			if got.BestStreak != tt.wantBest {
				t.Errorf("BestStreak = %d, want %d", got.BestStreak, tt.wantBest)
			}
			if got.TotalCompletions != tt.wantTotal {
				t.Errorf("TotalCompletions = %d, want %d", got.TotalCompletions, tt.wantTotal)
			}
			if got.BestStreak < got.CurrentStreak {
				t.Errorf("invariant broken: best %d < current %d", got.BestStreak, got.CurrentStreak)
			}
			if got.TotalCompletions < got.CurrentStreak {
				t.Errorf("invariant broken: total %d < current %d", got.TotalCompletions, got.CurrentStreak)
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	in := records(daysAgo(4), daysAgo(3), daysAgo(1), today)
	first := Compute("h1", today, in, 0)
	for i := 0; i < 5; i++ {
		again := Compute("h1", today, in, 0)
		if again != first {
			t.Fatalf("Compute() returned %+v on call %d, want %+v", again, i+2, first)
		}
	}
}

func TestBestStreakMonotonicAcrossToggles(t *testing.T) {
	// Simulate a sequence of toggles and feed each stored best back in
	ledger := map[string]bool{}
	toggles := []struct {
		day  string
		done bool
	}{
		{daysAgo(3), true},
		{daysAgo(2), true},
		{daysAgo(1), true},
		{today, true},
		{daysAgo(2), false},
		{daysAgo(1), false},
		{daysAgo(3), false},
		{daysAgo(2), true},
	}

	best := 0
	for i, tg := range toggles {
		ledger[tg.day] = tg.done
		var rs []models.CompletionRecord
		for day, done := range ledger {
			rs = append(rs, models.CompletionRecord{HabitID: "h1", Day: day, Completed: done})
		}
		state := Compute("h1", today, rs, best)
		if state.BestStreak < best {
			t.Fatalf("step %d: best streak decreased from %d to %d", i, best, state.BestStreak)
		}
		best = state.BestStreak
	}

	if best != 4 {
		t.Errorf("final best streak = %d, want 4", best)
	}
}

func TestDrinkWaterScenario(t *testing.T) {
	day1, day2, day3 := "2025-06-13", "2025-06-14", "2025-06-15"

	state := Compute("water", day3, records(day1, day2, day3), 0)
	if state.CurrentStreak != 3 || state.BestStreak != 3 {
		t.Fatalf("after three days got current=%d best=%d, want 3/3", state.CurrentStreak, state.BestStreak)
	}

	// Undo day 2
	state = Compute("water", day3, records(day1, day3), state.BestStreak)
	if state.CurrentStreak != 1 {
		t.Errorf("after undo current = %d, want 1", state.CurrentStreak)
	}
	if state.BestStreak != 3 {
		t.Errorf("after undo best = %d, want 3", state.BestStreak)
	}
}

func TestLongestRun(t *testing.T) {
	tests := []struct {
		days []string
		want int
	}{
		{nil, 0},
		{[]string{"2025-01-01"}, 1},
		{[]string{"2025-01-01", "2025-01-02", "2025-01-04"}, 2},
		{[]string{"2024-02-28", "2024-02-29", "2024-03-01"}, 3},
		{[]string{"2024-12-31", "2025-01-01", "2025-01-02", "2025-01-03"}, 4},
	}

	for _, tt := range tests {
		if got := LongestRun(tt.days); got != tt.want {
			t.Errorf("LongestRun(%v) = %d, want %d", tt.days, got, tt.want)
		}
	}
}
