package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/wellkept/internal/constants"
	apperrors "github.com/julianstephens/wellkept/internal/errors"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID            string     `json:"id"`
	Owner         string     `json:"owner"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category"`
	Points        int        `json:"points"` // points per completion
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

// Validate checks the habit definition before it is stored
func (h Habit) Validate() error {
	if strings.TrimSpace(h.Owner) == "" {
		return fmt.Errorf("%w: owner is required", apperrors.ErrInvalidHabit)
	}
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrInvalidHabit)
	}
	if h.Points <= 0 || h.Points > constants.MaxHabitPoints {
		return fmt.Errorf("%w: points must be between 1 and %d, got %d", apperrors.ErrInvalidHabit, constants.MaxHabitPoints, h.Points)
	}
	return nil
}

// CompletionRecord is the single ledger row for one habit on one calendar day
type CompletionRecord struct {
	ID            string    `json:"id"`
	HabitID       string    `json:"habit_id"`
	Owner         string    `json:"owner"`
	Day           string    `json:"day"` // YYYY-MM-DD format
	Completed     bool      `json:"completed"`
	PointsAwarded int       `json:"points_awarded"` // frozen at completion time
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CompletionChange describes the outcome of an atomic completion upsert.
// Changed is true only when the stored completed flag actually flipped.
type CompletionChange struct {
	Record  CompletionRecord `json:"record"`
	Changed bool             `json:"changed"`
}

// StreakState is derived from the ledger and cached per habit
type StreakState struct {
	HabitID          string    `json:"habit_id"`
	CurrentStreak    int       `json:"current_streak"`
	BestStreak       int       `json:"best_streak"`
	TotalCompletions int       `json:"total_completions"`
	LastCompletedDay string    `json:"last_completed_day,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}
