package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/wellkept/internal/errors"
	"github.com/julianstephens/wellkept/internal/models"
)

const completionColumns = "id, habit_id, owner, day, completed, points_awarded, note, created_at, updated_at"

func scanCompletion(row rowScanner) (models.CompletionRecord, error) {
	var r models.CompletionRecord
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.HabitID, &r.Owner, &r.Day, &r.Completed, &r.PointsAwarded, &r.Note, &createdAt, &updatedAt); err != nil {
		return models.CompletionRecord{}, err
	}

	var err error
	if r.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.CompletionRecord{}, err
	}
	if r.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.CompletionRecord{}, err
	}
	return r, nil
}

// SetCompletion applies a mark or undo as a single conditional statement.
// A returned row means the completed flag flipped.
func (s *Store) SetCompletion(ctx context.Context, rec models.CompletionRecord) (models.CompletionChange, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := formatTime(rec.UpdatedAt)

	var row *sql.Row
	if rec.Completed {
		row = s.q.QueryRowContext(ctx, `
			INSERT INTO completions (`+completionColumns+`)
			VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?)
			ON CONFLICT(habit_id, day) DO UPDATE SET
				completed = 1,
				points_awarded = excluded.points_awarded,
				note = excluded.note,
				updated_at = excluded.updated_at
			WHERE completions.completed = 0
			RETURNING `+completionColumns,
			rec.ID, rec.HabitID, rec.Owner, rec.Day, rec.PointsAwarded, rec.Note, now, now)
	} else {
		row = s.q.QueryRowContext(ctx, `
			UPDATE completions SET completed = 0, updated_at = ?
			WHERE habit_id = ? AND day = ? AND completed = 1
			RETURNING `+completionColumns,
			now, rec.HabitID, rec.Day)
	}

	stored, err := scanCompletion(row)
	if err == nil {
		return models.CompletionChange{Record: stored, Changed: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		err = apperrors.Classify(err)
		if !errors.Is(err, apperrors.ErrConstraintViolation) {
			return models.CompletionChange{}, fmt.Errorf("failed to set completion: %w", err)
		}
	}

	// No transition: the row is already in the requested state
	current, err := s.GetCompletion(ctx, rec.HabitID, rec.Day)
	if err != nil {
		if apperrors.IsNotFound(err) && !rec.Completed {
			return models.CompletionChange{Record: models.CompletionRecord{HabitID: rec.HabitID, Owner: rec.Owner, Day: rec.Day}}, nil
		}
		return models.CompletionChange{}, err
	}
	return models.CompletionChange{Record: current}, nil
}

func (s *Store) GetCompletion(ctx context.Context, habitID, day string) (models.CompletionRecord, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+completionColumns+` FROM completions WHERE habit_id = ? AND day = ?`, habitID, day)
	r, err := scanCompletion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CompletionRecord{}, fmt.Errorf("completion %s@%s: %w", habitID, day, apperrors.ErrNotFound)
		}
		return models.CompletionRecord{}, apperrors.Classify(err)
	}
	return r, nil
}

func (s *Store) ListCompletions(ctx context.Context, habitID, fromDay, toDay string) ([]models.CompletionRecord, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+completionColumns+` FROM completions
		WHERE habit_id = ? AND day >= ? AND day <= ?
		ORDER BY day`, habitID, fromDay, toDay)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	defer rows.Close()

	var records []models.CompletionRecord
	for rows.Next() {
		r, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, apperrors.Classify(rows.Err())
}

// CountCompletedOnDay counts completed rows for the owner's active habits
func (s *Store) CountCompletedOnDay(ctx context.Context, owner, day string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT count(*) FROM completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE c.owner = ? AND c.day = ? AND c.completed = 1 AND h.active = 1`, owner, day).Scan(&n)
	if err != nil {
		return 0, apperrors.Classify(err)
	}
	return n, nil
}

// SumCompletedPoints adds up frozen points over every currently completed row
func (s *Store) SumCompletedPoints(ctx context.Context, owner string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points_awarded), 0) FROM completions
		WHERE owner = ? AND completed = 1`, owner).Scan(&n)
	if err != nil {
		return 0, apperrors.Classify(err)
	}
	return n, nil
}

func (s *Store) GetStreak(ctx context.Context, habitID string) (models.StreakState, error) {
	st := models.StreakState{HabitID: habitID}
	var updatedAt string
	err := s.q.QueryRowContext(ctx, `
		SELECT current_streak, best_streak, total_completions, last_completed_day, updated_at
		FROM habit_streaks WHERE habit_id = ?`, habitID).
		Scan(&st.CurrentStreak, &st.BestStreak, &st.TotalCompletions, &st.LastCompletedDay, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, nil
		}
		return models.StreakState{}, apperrors.Classify(err)
	}
	if st.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.StreakState{}, err
	}
	return st, nil
}

func (s *Store) SaveStreak(ctx context.Context, st models.StreakState) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO habit_streaks (habit_id, current_streak, best_streak, total_completions, last_completed_day, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			best_streak = MAX(habit_streaks.best_streak, excluded.best_streak),
			total_completions = excluded.total_completions,
			last_completed_day = excluded.last_completed_day,
			updated_at = excluded.updated_at`,
		st.HabitID, st.CurrentStreak, st.BestStreak, st.TotalCompletions, st.LastCompletedDay, formatTime(st.UpdatedAt))
	if err != nil {
		return apperrors.Classify(fmt.Errorf("failed to save streak: %w", err))
	}
	return nil
}
