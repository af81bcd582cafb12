package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/wellkept/internal/clock"
	apperrors "github.com/julianstephens/wellkept/internal/errors"
	"github.com/julianstephens/wellkept/internal/models"
)

const accountColumns = "owner, total_points, weekly_points, monthly_points, week_start, month_start, updated_at"

func scanAccount(row rowScanner) (models.Account, error) {
	var a models.Account
	var updatedAt string
	if err := row.Scan(&a.Owner, &a.TotalPoints, &a.WeeklyPoints, &a.MonthlyPoints, &a.WeekStart, &a.MonthStart, &updatedAt); err != nil {
		return models.Account{}, err
	}
	var err error
	if a.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (s *Store) GetAccount(ctx context.Context, owner string) (models.Account, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner = ?`, owner)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{Owner: owner}, nil
		}
		return models.Account{}, apperrors.Classify(err)
	}
	return a, nil
}

// ApplyAccountDelta adds delta.Points relative to the stored values in one
// statement. Totals clamp at zero; window counters follow the window of the
// delta's day (same window adjusts, newer window restarts, older is ignored).
func (s *Store) ApplyAccountDelta(ctx context.Context, delta models.PointDelta, at time.Time) (models.Account, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?1, MAX(?2, 0), MAX(?2, 0), MAX(?2, 0), ?3, ?4, ?5)
		ON CONFLICT(owner) DO UPDATE SET
			total_points = MAX(accounts.total_points + ?2, 0),
			weekly_points = CASE
				WHEN accounts.week_start = ?3 THEN MAX(accounts.weekly_points + ?2, 0)
				WHEN accounts.week_start < ?3 THEN MAX(?2, 0)
				ELSE accounts.weekly_points END,
			week_start = CASE WHEN accounts.week_start < ?3 THEN ?3 ELSE accounts.week_start END,
			monthly_points = CASE
				WHEN accounts.month_start = ?4 THEN MAX(accounts.monthly_points + ?2, 0)
				WHEN accounts.month_start < ?4 THEN MAX(?2, 0)
				ELSE accounts.monthly_points END,
			month_start = CASE WHEN accounts.month_start < ?4 THEN ?4 ELSE accounts.month_start END,
			updated_at = ?5
		RETURNING `+accountColumns,
		delta.Owner, delta.Points, clock.WeekStart(delta.Day), clock.MonthStart(delta.Day), formatTime(at))

	a, err := scanAccount(row)
	if err != nil {
		return models.Account{}, apperrors.Classify(fmt.Errorf("failed to apply account delta: %w", err))
	}
	return a, nil
}

func (s *Store) ListUnlocks(ctx context.Context, owner string) ([]models.UnlockRecord, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT owner, reward_id, unlocked_at FROM unlocks
		WHERE owner = ? ORDER BY unlocked_at, reward_id`, owner)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	defer rows.Close()

	var unlocks []models.UnlockRecord
	for rows.Next() {
		var u models.UnlockRecord
		var unlockedAt string
		if err := rows.Scan(&u.Owner, &u.RewardID, &unlockedAt); err != nil {
			return nil, err
		}
		if u.UnlockedAt, err = parseTime("unlocked_at", unlockedAt); err != nil {
			return nil, err
		}
		unlocks = append(unlocks, u)
	}
	return unlocks, apperrors.Classify(rows.Err())
}

func (s *Store) InsertUnlockIfAbsent(ctx context.Context, u models.UnlockRecord) (bool, error) {
	result, err := s.q.ExecContext(ctx, `
		INSERT INTO unlocks (owner, reward_id, unlocked_at) VALUES (?, ?, ?)
		ON CONFLICT(owner, reward_id) DO NOTHING`,
		u.Owner, u.RewardID, formatTime(u.UnlockedAt))
	if err != nil {
		err = apperrors.Classify(err)
		if errors.Is(err, apperrors.ErrConstraintViolation) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert unlock: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
