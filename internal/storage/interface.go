// Package storage defines the persistence boundary for habits, the completion
// ledger, streak caches, accounts and reward unlocks.
package storage

import (
	"context"
	"time"

	"github.com/julianstephens/wellkept/internal/migration"
	"github.com/julianstephens/wellkept/internal/models"
)

// Provider is implemented by every backend. Uniqueness on (habit, day) and
// (owner, reward) is enforced by the backend with atomic upserts; callers
// never read-then-write those rows.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	ListHabits(ctx context.Context, owner string) ([]models.Habit, error)
	ListActiveHabits(ctx context.Context, owner string) ([]models.Habit, error)
	// DeactivateHabit is one-way. Deactivating an inactive habit is a no-op.
	DeactivateHabit(ctx context.Context, id string, at time.Time) error

	// Completion ledger
	//
	// SetCompletion marks (rec.Completed) or undoes a completion. Marking stores
	// rec.PointsAwarded only on a false->true transition; undoing keeps the
	// frozen points on the row. Changed reports whether the flag flipped.
	SetCompletion(ctx context.Context, rec models.CompletionRecord) (models.CompletionChange, error)
	GetCompletion(ctx context.Context, habitID, day string) (models.CompletionRecord, error)
	ListCompletions(ctx context.Context, habitID, fromDay, toDay string) ([]models.CompletionRecord, error)
	CountCompletedOnDay(ctx context.Context, owner, day string) (int, error)
	SumCompletedPoints(ctx context.Context, owner string) (int, error)

	// Streak cache. SaveStreak never lowers the stored best streak.
	GetStreak(ctx context.Context, habitID string) (models.StreakState, error)
	SaveStreak(ctx context.Context, state models.StreakState) error

	// Accounts. A missing account reads as a zero account.
	GetAccount(ctx context.Context, owner string) (models.Account, error)
	ApplyAccountDelta(ctx context.Context, delta models.PointDelta, at time.Time) (models.Account, error)

	// Unlocks. InsertUnlockIfAbsent reports whether a new row was written.
	ListUnlocks(ctx context.Context, owner string) ([]models.UnlockRecord, error)
	InsertUnlockIfAbsent(ctx context.Context, unlock models.UnlockRecord) (bool, error)

	// WithinTx runs fn against a provider bound to one unit of work. If fn
	// returns an error nothing it wrote is kept.
	WithinTx(ctx context.Context, fn func(tx Provider) error) error
}

// RequiredTables are the tables every backend must provide after migration
var RequiredTables = []string{"habits", "completions", "habit_streaks", "accounts", "unlocks"}

// SchemaChecker is implemented by backends that can report missing tables
type SchemaChecker interface {
	MissingTables(ctx context.Context) ([]string, error)
}

// Migratable is implemented by SQL backends with an embedded migration set
type Migratable interface {
	Migrator() (*migration.Runner, error)
}
