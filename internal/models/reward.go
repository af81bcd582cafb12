package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/wellkept/internal/constants"
)

// Requirement is a threshold rule: the snapshot field selected by Type must be >= Value
type Requirement struct {
	Type  constants.RequirementType `json:"type" yaml:"type"`
	Value int                       `json:"value" yaml:"value"`
}

// Reward is a badge or achievement from the global catalog
type Reward struct {
	ID          string               `json:"id" yaml:"id"`
	Kind        constants.RewardKind `json:"kind" yaml:"kind"`
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description" yaml:"description"`
	Icon        string               `json:"icon,omitempty" yaml:"icon,omitempty"`
	Requirement Requirement          `json:"requirement" yaml:"requirement"`
}

func (r Reward) String() string {
	return fmt.Sprintf("%s %s (%s >= %d)", r.Icon, r.Name, r.Requirement.Type, r.Requirement.Value)
}

// UnlockRecord marks that an owner earned a reward. Never removed.
type UnlockRecord struct {
	Owner      string    `json:"owner"`
	RewardID   string    `json:"reward_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Snapshot is the aggregate view the rule engine evaluates
type Snapshot struct {
	Owner                string `json:"owner"`
	TotalPoints          int    `json:"total_points"`
	BestStreak           int    `json:"best_streak"` // max best streak across active habits
	HabitsCompletedToday int    `json:"habits_completed_today"`
	WeeklyPoints         int    `json:"weekly_points"`
	CurrentLevel         int    `json:"current_level"`
	HabitCount           int    `json:"habit_count"` // active habits
}
