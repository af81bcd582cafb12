// Package rules evaluates threshold rules against an owner's aggregates and
// reports the rewards that newly qualify.
package rules

import (
	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/models"
)

// measures maps each requirement type to the snapshot field it reads
var measures = map[constants.RequirementType]func(models.Snapshot) int{
	constants.RequirementTotalPoints:          func(s models.Snapshot) int { return s.TotalPoints },
	constants.RequirementStreakDays:           func(s models.Snapshot) int { return s.BestStreak },
	constants.RequirementHabitsCompletedToday: func(s models.Snapshot) int { return s.HabitsCompletedToday },
	constants.RequirementWeeklyPoints:         func(s models.Snapshot) int { return s.WeeklyPoints },
	constants.RequirementLevel:                func(s models.Snapshot) int { return s.CurrentLevel },
	constants.RequirementHabitCount:           func(s models.Snapshot) int { return s.HabitCount },
}

// Supported reports whether the requirement type has an evaluator
func Supported(t constants.RequirementType) bool {
	_, ok := measures[t]
	return ok
}

// Measure returns the snapshot value a requirement type is compared against
func Measure(t constants.RequirementType, s models.Snapshot) (int, bool) {
	fn, ok := measures[t]
	if !ok {
		return 0, false
	}
	return fn(s), true
}

// Met reports whether the snapshot satisfies a requirement
func Met(req models.Requirement, s models.Snapshot) bool {
	v, ok := Measure(req.Type, s)
	return ok && v >= req.Value
}

// Evaluate returns every catalog reward that the snapshot satisfies and that
// is not already in unlocked. All qualifying rewards are returned in catalog
// order; nothing is persisted here.
func Evaluate(s models.Snapshot, catalog []models.Reward, unlocked map[string]bool) []models.Reward {
	var out []models.Reward
	for _, r := range catalog {
		if unlocked[r.ID] {
			continue
		}
		if Met(r.Requirement, s) {
			out = append(out, r)
		}
	}
	return out
}

// Progress returns the measured value and the fraction of the threshold reached, capped at 1
func Progress(r models.Reward, s models.Snapshot) (int, float64) {
	v, ok := Measure(r.Requirement.Type, s)
	if !ok || r.Requirement.Value <= 0 {
		return 0, 0
	}
	p := float64(v) / float64(r.Requirement.Value)
	if p > 1 {
		p = 1
	}
	return v, p
}

// UnlockedSet indexes unlock records by reward id
func UnlockedSet(records []models.UnlockRecord) map[string]bool {
	set := make(map[string]bool, len(records))
	for _, u := range records {
		set[u.RewardID] = true
	}
	return set
}
