package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/wellkept/internal/errors"
	"github.com/julianstephens/wellkept/internal/models"
)

const habitColumns = "id, owner, name, description, category, points, active, created_at, deactivated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	var deactivatedAt sql.NullString

	if err := row.Scan(&h.ID, &h.Owner, &h.Name, &h.Description, &h.Category, &h.Points, &h.Active, &createdAt, &deactivatedAt); err != nil {
		return models.Habit{}, err
	}

	var err error
	h.CreatedAt, err = parseTime("created_at", createdAt)
	if err != nil {
		return models.Habit{}, err
	}
	if deactivatedAt.Valid {
		t, err := parseTime("deactivated_at", deactivatedAt.String)
		if err != nil {
			return models.Habit{}, err
		}
		h.DeactivatedAt = &t
	}
	return h, nil
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	var deactivatedAt sql.NullString
	if habit.DeactivatedAt != nil {
		deactivatedAt = sql.NullString{String: formatTime(*habit.DeactivatedAt), Valid: true}
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.Owner, habit.Name, habit.Description, habit.Category, habit.Points,
		boolInt(habit.Active), formatTime(habit.CreatedAt), deactivatedAt)
	if err != nil {
		return apperrors.Classify(fmt.Errorf("failed to add habit: %w", err))
	}
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
		}
		return models.Habit{}, apperrors.Classify(err)
	}
	return h, nil
}

func (s *Store) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	return s.listHabits(ctx, `SELECT `+habitColumns+` FROM habits WHERE owner = ? ORDER BY created_at, name`, owner)
}

func (s *Store) ListActiveHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	return s.listHabits(ctx, `SELECT `+habitColumns+` FROM habits WHERE owner = ? AND active = 1 ORDER BY created_at, name`, owner)
}

func (s *Store) listHabits(ctx context.Context, query string, args ...any) ([]models.Habit, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, apperrors.Classify(rows.Err())
}

func (s *Store) DeactivateHabit(ctx context.Context, id string, at time.Time) error {
	result, err := s.q.ExecContext(ctx, `
		UPDATE habits SET active = 0, deactivated_at = ? WHERE id = ? AND active = 1`,
		formatTime(at), id)
	if err != nil {
		return apperrors.Classify(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either already inactive or missing
		if _, err := s.GetHabit(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
