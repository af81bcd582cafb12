// Package memory is a process-local storage.Provider used by tests and by
// the MCP and API layers when no database is configured.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/wellkept/internal/errors"
	"github.com/julianstephens/wellkept/internal/gamification"
	"github.com/julianstephens/wellkept/internal/models"
	"github.com/julianstephens/wellkept/internal/storage"
)

type completionKey struct {
	habitID string
	day     string
}

type unlockKey struct {
	owner    string
	rewardID string
}

type state struct {
	habits      map[string]models.Habit
	completions map[completionKey]models.CompletionRecord
	streaks     map[string]models.StreakState
	accounts    map[string]models.Account
	unlocks     map[unlockKey]models.UnlockRecord
}

func newState() *state {
	return &state{
		habits:      map[string]models.Habit{},
		completions: map[completionKey]models.CompletionRecord{},
		streaks:     map[string]models.StreakState{},
		accounts:    map[string]models.Account{},
		unlocks:     map[unlockKey]models.UnlockRecord{},
	}
}

func (s *state) clone() *state {
	return &state{
		habits:      maps.Clone(s.habits),
		completions: maps.Clone(s.completions),
		streaks:     maps.Clone(s.streaks),
		accounts:    maps.Clone(s.accounts),
		unlocks:     maps.Clone(s.unlocks),
	}
}

// Store keeps everything in maps behind one mutex. A store handed to a
// WithinTx callback shares the lock already held by the transaction.
type Store struct {
	mu     *sync.Mutex
	data   **state
	locked bool
	closed *bool
}

func NewStore() *Store {
	data := newState()
	closed := false
	return &Store{mu: &sync.Mutex{}, data: &data, closed: &closed}
}

func (s *Store) lock() func() {
	if s.locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) st() *state {
	return *s.data
}

func (s *Store) check() error {
	if *s.closed {
		return fmt.Errorf("%w: store is closed", apperrors.ErrStorageUnavailable)
	}
	return nil
}

func (s *Store) Init() error           { return nil }
func (s *Store) Load() error           { return nil }
func (s *Store) GetConfigPath() string { return "memory" }

func (s *Store) Close() error {
	defer s.lock()()
	*s.closed = true
	return nil
}

// WithinTx snapshots the state and restores it when fn fails
func (s *Store) WithinTx(ctx context.Context, fn func(tx storage.Provider) error) error {
	if s.locked {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.st().clone()
	tx := &Store{mu: s.mu, data: s.data, locked: true, closed: s.closed}
	if err := fn(tx); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) AddHabit(_ context.Context, habit models.Habit) error {
	defer s.lock()()
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.st().habits[habit.ID]; ok {
		return fmt.Errorf("%w: habit %s already exists", apperrors.ErrConstraintViolation, habit.ID)
	}
	if habit.Active {
		for _, h := range s.st().habits {
			if h.Active && h.Owner == habit.Owner && strings.EqualFold(h.Name, habit.Name) {
				return fmt.Errorf("%w: active habit %q already exists", apperrors.ErrConstraintViolation, habit.Name)
			}
		}
	}
	s.st().habits[habit.ID] = habit
	return nil
}

func (s *Store) GetHabit(_ context.Context, id string) (models.Habit, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return models.Habit{}, err
	}
	h, ok := s.st().habits[id]
	if !ok {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
	}
	return h, nil
}

func (s *Store) ListHabits(_ context.Context, owner string) ([]models.Habit, error) {
	return s.listHabits(owner, false)
}

func (s *Store) ListActiveHabits(_ context.Context, owner string) ([]models.Habit, error) {
	return s.listHabits(owner, true)
}

func (s *Store) listHabits(owner string, activeOnly bool) ([]models.Habit, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return nil, err
	}
	var out []models.Habit
	for _, h := range s.st().habits {
		if h.Owner != owner || (activeOnly && !h.Active) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) DeactivateHabit(_ context.Context, id string, at time.Time) error {
	defer s.lock()()
	if err := s.check(); err != nil {
		return err
	}
	h, ok := s.st().habits[id]
	if !ok {
		return fmt.Errorf("habit %s: %w", id, apperrors.ErrNotFound)
	}
	if h.Active {
		h.Active = false
		h.DeactivatedAt = &at
		s.st().habits[id] = h
	}
	return nil
}

func (s *Store) SetCompletion(_ context.Context, rec models.CompletionRecord) (models.CompletionChange, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return models.CompletionChange{}, err
	}

	key := completionKey{rec.HabitID, rec.Day}
	current, exists := s.st().completions[key]

	if !rec.Completed {
		if !exists {
			return models.CompletionChange{Record: models.CompletionRecord{HabitID: rec.HabitID, Owner: rec.Owner, Day: rec.Day}}, nil
		}
		if !current.Completed {
			return models.CompletionChange{Record: current}, nil
		}
		current.Completed = false
		current.UpdatedAt = rec.UpdatedAt
		s.st().completions[key] = current
		return models.CompletionChange{Record: current, Changed: true}, nil
	}

	if exists && current.Completed {
		return models.CompletionChange{Record: current}, nil
	}
	if !exists {
		current = models.CompletionRecord{ID: rec.ID, HabitID: rec.HabitID, Owner: rec.Owner, Day: rec.Day, CreatedAt: rec.UpdatedAt}
		if current.ID == "" {
			current.ID = uuid.New().String()
		}
	}
	current.Completed = true
	current.PointsAwarded = rec.PointsAwarded
	current.Note = rec.Note
	current.UpdatedAt = rec.UpdatedAt
	s.st().completions[key] = current
	return models.CompletionChange{Record: current, Changed: true}, nil
}

func (s *Store) GetCompletion(_ context.Context, habitID, day string) (models.CompletionRecord, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return models.CompletionRecord{}, err
	}
	r, ok := s.st().completions[completionKey{habitID, day}]
	if !ok {
		return models.CompletionRecord{}, fmt.Errorf("completion %s@%s: %w", habitID, day, apperrors.ErrNotFound)
	}
	return r, nil
}

func (s *Store) ListCompletions(_ context.Context, habitID, fromDay, toDay string) ([]models.CompletionRecord, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return nil, err
	}
	var out []models.CompletionRecord
	for k, r := range s.st().completions {
		if k.habitID == habitID && k.day >= fromDay && k.day <= toDay {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *Store) CountCompletedOnDay(_ context.Context, owner, day string) (int, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return 0, err
	}
	n := 0
	for k, r := range s.st().completions {
		if k.day != day || r.Owner != owner || !r.Completed {
			continue
		}
		if h, ok := s.st().habits[k.habitID]; ok && h.Active {
			n++
		}
	}
	return n, nil
}

func (s *Store) SumCompletedPoints(_ context.Context, owner string) (int, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return 0, err
	}
	sum := 0
	for _, r := range s.st().completions {
		if r.Owner == owner && r.Completed {
			sum += r.PointsAwarded
		}
	}
	return sum, nil
}

func (s *Store) GetStreak(_ context.Context, habitID string) (models.StreakState, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return models.StreakState{}, err
	}
	st, ok := s.st().streaks[habitID]
	if !ok {
		return models.StreakState{HabitID: habitID}, nil
	}
	return st, nil
}

func (s *Store) SaveStreak(_ context.Context, st models.StreakState) error {
	defer s.lock()()
	if err := s.check(); err != nil {
		return err
	}
	if prev, ok := s.st().streaks[st.HabitID]; ok {
		st.BestStreak = max(st.BestStreak, prev.BestStreak)
	}
	s.st().streaks[st.HabitID] = st
	return nil
}

func (s *Store) GetAccount(_ context.Context, owner string) (models.Account, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return models.Account{}, err
	}
	a, ok := s.st().accounts[owner]
	if !ok {
		return models.Account{Owner: owner}, nil
	}
	return a, nil
}

func (s *Store) ApplyAccountDelta(_ context.Context, delta models.PointDelta, at time.Time) (models.Account, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return models.Account{}, err
	}
	a := gamification.Apply(s.st().accounts[delta.Owner], delta)
	a.UpdatedAt = at
	s.st().accounts[delta.Owner] = a
	return a, nil
}

func (s *Store) ListUnlocks(_ context.Context, owner string) ([]models.UnlockRecord, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return nil, err
	}
	var out []models.UnlockRecord
	for k, u := range s.st().unlocks {
		if k.owner == owner {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].UnlockedAt.Before(out[j].UnlockedAt)
		}
		return out[i].RewardID < out[j].RewardID
	})
	return out, nil
}

func (s *Store) InsertUnlockIfAbsent(_ context.Context, u models.UnlockRecord) (bool, error) {
	defer s.lock()()
	if err := s.check(); err != nil {
		return false, err
	}
	key := unlockKey{u.Owner, u.RewardID}
	if _, ok := s.st().unlocks[key]; ok {
		return false, nil
	}
	s.st().unlocks[key] = u
	return true, nil
}

// MissingTables always reports a complete schema
func (s *Store) MissingTables(context.Context) ([]string, error) {
	return nil, s.check()
}

var _ storage.Provider = (*Store)(nil)
