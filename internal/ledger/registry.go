package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/wellkept/internal/constants"
	apperrors "github.com/julianstephens/wellkept/internal/errors"
	"github.com/julianstephens/wellkept/internal/logger"
	"github.com/julianstephens/wellkept/internal/models"
)

// HabitInput holds the user-supplied fields of a new habit
type HabitInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Points      int    `json:"points,omitempty"`
}

// CreateHabit validates and stores a new active habit
func (s *Service) CreateHabit(ctx context.Context, owner string, in HabitInput) (models.Habit, error) {
	h := models.Habit{
		ID:          uuid.New().String(),
		Owner:       owner,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Points:      in.Points,
		Active:      true,
		CreatedAt:   s.calendar.Now(),
	}
	if h.Category == "" {
		h.Category = constants.DefaultCategory
	}
	if h.Points == 0 {
		h.Points = constants.DefaultHabitPoints
	}
	if err := h.Validate(); err != nil {
		return models.Habit{}, err
	}

	// Active names are unique per owner, case-insensitively, at the storage layer
	if err := s.store.AddHabit(ctx, h); err != nil {
		if errors.Is(err, apperrors.ErrConstraintViolation) {
			return models.Habit{}, fmt.Errorf("%w: an active habit named %q already exists", apperrors.ErrInvalidHabit, h.Name)
		}
		return models.Habit{}, err
	}
	logger.Debug("Habit created", "owner", owner, "habit", h.Name, "points", h.Points)
	return h, nil
}

// DeactivateHabit retires a habit for good. Its history stays readable.
func (s *Service) DeactivateHabit(ctx context.Context, owner, habitID string) (models.Habit, error) {
	h, err := ownedHabit(ctx, s.store, owner, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if !h.Active {
		return h, nil
	}
	now := s.calendar.Now()
	if err := s.store.DeactivateHabit(ctx, h.ID, now); err != nil {
		return models.Habit{}, err
	}
	h.Active = false
	h.DeactivatedAt = &now
	logger.Debug("Habit deactivated", "owner", owner, "habit", h.Name)
	return h, nil
}

// ListActiveHabits returns the habits that can still take completions
func (s *Service) ListActiveHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	return s.store.ListActiveHabits(ctx, owner)
}

// ListHabits returns every habit the owner ever created
func (s *Service) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, owner)
}

// GetHabit returns one of the owner's habits
func (s *Service) GetHabit(ctx context.Context, owner, habitID string) (models.Habit, error) {
	return ownedHabit(ctx, s.store, owner, habitID)
}

// FindHabit resolves ref as a habit id, then as a case-insensitive name.
// Active habits win a name clash with inactive ones.
func (s *Service) FindHabit(ctx context.Context, owner, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	h, err := ownedHabit(ctx, s.store, owner, ref)
	if err == nil {
		return h, nil
	}
	if !apperrors.IsNotFound(err) {
		return models.Habit{}, err
	}

	habits, err := s.store.ListHabits(ctx, owner)
	if err != nil {
		return models.Habit{}, err
	}
	var match *models.Habit
	for i := range habits {
		if !strings.EqualFold(habits[i].Name, ref) {
			continue
		}
		if match == nil || (habits[i].Active && !match.Active) {
			match = &habits[i]
		}
	}
	if match == nil {
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, apperrors.ErrNotFound)
	}
	return *match, nil
}
