package postgres

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
	err := row.Scan(&r.ID, &r.HabitID, &r.Owner, &r.Day, &r.Completed, &r.PointsAwarded, &r.Note, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Store) SetCompletion(ctx context.Context, rec models.CompletionRecord) (models.CompletionChange, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	var row *sql.Row
	if rec.Completed {
		row = s.q.QueryRowContext(ctx, `
			INSERT INTO completions (`+completionColumns+`)
			VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7, $7)
			ON CONFLICT (habit_id, day) DO UPDATE SET
				completed = TRUE,
				points_awarded = EXCLUDED.points_awarded,
				note = EXCLUDED.note,
				updated_at = EXCLUDED.updated_at
			WHERE completions.completed = FALSE
			RETURNING `+completionColumns,
			rec.ID, rec.HabitID, rec.Owner, rec.Day, rec.PointsAwarded, rec.Note, rec.UpdatedAt)
	} else {
		row = s.q.QueryRowContext(ctx, `
			UPDATE completions SET completed = FALSE, updated_at = $1
			WHERE habit_id = $2 AND day = $3 AND completed
			RETURNING `+completionColumns,
			rec.UpdatedAt, rec.HabitID, rec.Day)
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
	row := s.q.QueryRowContext(ctx, `SELECT `+completionColumns+` FROM completions WHERE habit_id = $1 AND day = $2`, habitID, day)
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
		WHERE habit_id = $1 AND day >= $2 AND day <= $3
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

func (s *Store) CountCompletedOnDay(ctx context.Context, owner, day string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT count(*) FROM completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE c.owner = $1 AND c.day = $2 AND c.completed AND h.active`, owner, day).Scan(&n)
	if err != nil {
		return 0, apperrors.Classify(err)
	}
	return n, nil
}

func (s *Store) SumCompletedPoints(ctx context.Context, owner string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points_awarded), 0) FROM completions
		WHERE owner = $1 AND completed`, owner).Scan(&n)
	if err != nil {
		return 0, apperrors.Classify(err)
	}
	return n, nil
}

func (s *Store) GetStreak(ctx context.Context, habitID string) (models.StreakState, error) {
	st := models.StreakState{HabitID: habitID}
	err := s.q.QueryRowContext(ctx, `
		SELECT current_streak, best_streak, total_completions, last_completed_day, updated_at
		FROM habit_streaks WHERE habit_id = $1`, habitID).
		Scan(&st.CurrentStreak, &st.BestStreak, &st.TotalCompletions, &st.LastCompletedDay, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, nil
		}
		return models.StreakState{}, apperrors.Classify(err)
	}
	return st, nil
}

func (s *Store) SaveStreak(ctx context.Context, st models.StreakState) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO habit_streaks (habit_id, current_streak, best_streak, total_completions, last_completed_day, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (habit_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			best_streak = GREATEST(habit_streaks.best_streak, EXCLUDED.best_streak),
			total_completions = EXCLUDED.total_completions,
			last_completed_day = EXCLUDED.last_completed_day,
			updated_at = EXCLUDED.updated_at`,
		st.HabitID, st.CurrentStreak, st.BestStreak, st.TotalCompletions, st.LastCompletedDay, st.UpdatedAt)
	if err != nil {
		return apperrors.Classify(fmt.Errorf("failed to save streak: %w", err))
	}
	return nil
}
