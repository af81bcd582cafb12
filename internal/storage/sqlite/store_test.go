package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	moderncsqlite "modernc.org/sqlite"

	apperrors "github.com/julianstephens/wellkept/internal/errors"
	"github.com/julianstephens/wellkept/internal/gamification"
	"github.com/julianstephens/wellkept/internal/models"
	"github.com/julianstephens/wellkept/internal/storage"
)

var testTime = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	cleanup := func() {
		store.Close()
	}
	return store, cleanup
}

func addTestHabit(t *testing.T, s *Store, id, owner string, points int) models.Habit {
	t.Helper()
	h := models.Habit{ID: id, Owner: owner, Name: "Habit " + id, Category: "general", Points: points, Active: true, CreatedAt: testTime}
	if err := s.AddHabit(context.Background(), h); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	return h
}

func mark(habitID, day string, points int) models.CompletionRecord {
	return models.CompletionRecord{HabitID: habitID, Owner: "alice", Day: day, Completed: true, PointsAwarded: points, UpdatedAt: testTime}
}

func undo(habitID, day string) models.CompletionRecord {
	return models.CompletionRecord{HabitID: habitID, Owner: "alice", Day: day, Completed: false, UpdatedAt: testTime}
}

func TestInitAndLoad(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	fresh := NewStore(dbPath)
	if err := fresh.Load(); err == nil {
		t.Fatal("Load() before Init() should fail")
	}

	if err := fresh.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	fresh.Close()

	loaded := NewStore(dbPath)
	if err := loaded.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	defer loaded.Close()

	missing, err := loaded.MissingTables(context.Background())
	if err != nil {
		t.Fatalf("failed to check tables: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("missing tables after init: %v", missing)
	}
	if loaded.GetConfigPath() != dbPath {
		t.Errorf("GetConfigPath() = %q, want %q", loaded.GetConfigPath(), dbPath)
	}
}

func TestHabits(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	addTestHabit(t, store, "h1", "alice", 10)
	addTestHabit(t, store, "h2", "alice", 5)
	addTestHabit(t, store, "h3", "bob", 5)

	got, err := store.GetHabit(ctx, "h1")
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.Owner != "alice" || got.Points != 10 || !got.Active {
		t.Errorf("GetHabit() = %+v", got)
	}
	if !got.CreatedAt.Equal(testTime) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testTime)
	}

	if _, err := store.GetHabit(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetHabit(missing) error = %v, want ErrNotFound", err)
	}

	if err := store.DeactivateHabit(ctx, "h2", testTime); err != nil {
		t.Fatalf("failed to deactivate habit: %v", err)
	}
	if err := store.DeactivateHabit(ctx, "h2", testTime); err != nil {
		t.Errorf("second deactivate should be a no-op, got %v", err)
	}
	if err := store.DeactivateHabit(ctx, "missing", testTime); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("DeactivateHabit(missing) error = %v, want ErrNotFound", err)
	}

	active, err := store.ListActiveHabits(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to list active habits: %v", err)
	}
	if len(active) != 1 || active[0].ID != "h1" {
		t.Errorf("ListActiveHabits() = %v, want [h1]", active)
	}

	all, err := store.ListHabits(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListHabits() returned %d habits, want 2", len(all))
	}
	for _, h := range all {
		if h.ID == "h2" && (h.Active || h.DeactivatedAt == nil) {
			t.Errorf("h2 should be inactive with a deactivation time, got %+v", h)
		}
	}
}

func TestSetCompletionIsIdempotent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	addTestHabit(t, store, "h1", "alice", 10)

	first, err := store.SetCompletion(ctx, mark("h1", "2025-06-15", 10))
	if err != nil {
		t.Fatalf("failed to mark: %v", err)
	}
	if !first.Changed || !first.Record.Completed || first.Record.PointsAwarded != 10 {
		t.Errorf("first mark = %+v, want changed completed record worth 10", first)
	}

	second, err := store.SetCompletion(ctx, mark("h1", "2025-06-15", 25))
	if err != nil {
		t.Fatalf("failed to mark again: %v", err)
	}
	if second.Changed {
		t.Error("second mark should not report a change")
	}
	if second.Record.PointsAwarded != 10 {
		t.Errorf("frozen points changed to %d", second.Record.PointsAwarded)
	}

	records, err := store.ListCompletions(ctx, "h1", "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("failed to list completions: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want exactly 1", len(records))
	}
}

func TestSetCompletionUndoUsesFrozenPoints(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	addTestHabit(t, store, "h1", "alice", 10)

	if _, err := store.SetCompletion(ctx, mark("h1", "2025-06-14", 10)); err != nil {
		t.Fatalf("failed to mark: %v", err)
	}

	undone, err := store.SetCompletion(ctx, undo("h1", "2025-06-14"))
	if err != nil {
		t.Fatalf("failed to undo: %v", err)
	}
	if !undone.Changed || undone.Record.Completed {
		t.Errorf("undo = %+v, want changed and not completed", undone)
	}
	if undone.Record.PointsAwarded != 10 {
		t.Errorf("undo record points = %d, want frozen 10", undone.Record.PointsAwarded)
	}

	again, err := store.SetCompletion(ctx, undo("h1", "2025-06-14"))
	if err != nil {
		t.Fatalf("failed to undo again: %v", err)
	}
	if again.Changed {
		t.Error("second undo should not report a change")
	}

	never, err := store.SetCompletion(ctx, undo("h1", "2025-06-01"))
	if err != nil {
		t.Fatalf("undo of a never-marked day failed: %v", err)
	}
	if never.Changed || never.Record.Completed {
		t.Errorf("undo of a never-marked day = %+v, want no change", never)
	}

	remarked, err := store.SetCompletion(ctx, mark("h1", "2025-06-14", 15))
	if err != nil {
		t.Fatalf("failed to re-mark: %v", err)
	}
	if !remarked.Changed || remarked.Record.PointsAwarded != 15 {
		t.Errorf("re-mark = %+v, want changed with points 15", remarked)
	}
}

func TestSetCompletionConcurrentMarks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	addTestHabit(t, store, "h1", "alice", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	changed := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := store.SetCompletion(ctx, mark("h1", "2025-06-15", 10))
			if err != nil {
				t.Errorf("concurrent mark failed: %v", err)
				return
			}
			if res.Changed {
				mu.Lock()
				changed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if changed != 1 {
		t.Errorf("%d marks reported a transition, want 1", changed)
	}
}

func TestCountsAndSums(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	addTestHabit(t, store, "h1", "alice", 10)
	addTestHabit(t, store, "h2", "alice", 5)

	for _, rec := range []models.CompletionRecord{
		mark("h1", "2025-06-15", 10),
		mark("h2", "2025-06-15", 5),
		mark("h1", "2025-06-14", 10),
	} {
		if _, err := store.SetCompletion(ctx, rec); err != nil {
			t.Fatalf("failed to mark: %v", err)
		}
	}

	n, err := store.CountCompletedOnDay(ctx, "alice", "2025-06-15")
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if n != 2 {
		t.Errorf("CountCompletedOnDay() = %d, want 2", n)
	}

	if err := store.DeactivateHabit(ctx, "h2", testTime); err != nil {
		t.Fatalf("failed to deactivate: %v", err)
	}
	if n, _ = store.CountCompletedOnDay(ctx, "alice", "2025-06-15"); n != 1 {
		t.Errorf("CountCompletedOnDay() after deactivation = %d, want 1", n)
	}

	sum, err := store.SumCompletedPoints(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to sum: %v", err)
	}
	if sum != 25 {
		t.Errorf("SumCompletedPoints() = %d, want 25", sum)
	}
}

func TestSaveStreakKeepsBest(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	addTestHabit(t, store, "h1", "alice", 10)

	empty, err := store.GetStreak(ctx, "h1")
	if err != nil {
		t.Fatalf("failed to get streak: %v", err)
	}
	if empty.BestStreak != 0 || empty.HabitID != "h1" {
		t.Errorf("GetStreak() before save = %+v", empty)
	}

	if err := store.SaveStreak(ctx, models.StreakState{HabitID: "h1", CurrentStreak: 5, BestStreak: 5, TotalCompletions: 5, UpdatedAt: testTime}); err != nil {
		t.Fatalf("failed to save streak: %v", err)
	}
	if err := store.SaveStreak(ctx, models.StreakState{HabitID: "h1", CurrentStreak: 1, BestStreak: 2, TotalCompletions: 4, UpdatedAt: testTime}); err != nil {
		t.Fatalf("failed to save streak: %v", err)
	}

	got, err := store.GetStreak(ctx, "h1")
	if err != nil {
		t.Fatalf("failed to get streak: %v", err)
	}
	if got.BestStreak != 5 || got.CurrentStreak != 1 || got.TotalCompletions != 4 {
		t.Errorf("GetStreak() = %+v, want current 1 best 5 total 4", got)
	}
}

func TestApplyAccountDeltaMatchesReference(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	deltas := []models.PointDelta{
		{Owner: "alice", Points: 10, Day: "2025-06-02"},
		{Owner: "alice", Points: 30, Day: "2025-06-03"},
		{Owner: "alice", Points: -50, Day: "2025-06-03"},
		{Owner: "alice", Points: 95, Day: "2025-06-10"},
		{Owner: "alice", Points: -10, Day: "2025-06-04"},
		{Owner: "alice", Points: 10, Day: "2025-07-01"},
		{Owner: "alice", Points: -5, Day: "2025-06-30"},
	}

	want := models.Account{}
	for i, d := range deltas {
		got, err := store.ApplyAccountDelta(ctx, d, testTime)
		if err != nil {
			t.Fatalf("step %d: failed to apply delta: %v", i, err)
		}
		want = gamification.Apply(want, d)
		if got.TotalPoints != want.TotalPoints ||
			got.WeeklyPoints != want.WeeklyPoints || got.WeekStart != want.WeekStart ||
			got.MonthlyPoints != want.MonthlyPoints || got.MonthStart != want.MonthStart {
			t.Fatalf("step %d: store %+v, reference %+v", i, got, want)
		}
	}

	stored, err := store.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to get account: %v", err)
	}
	if stored.TotalPoints != want.TotalPoints {
		t.Errorf("GetAccount().TotalPoints = %d, want %d", stored.TotalPoints, want.TotalPoints)
	}

	missing, err := store.GetAccount(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetAccount(nobody) failed: %v", err)
	}
	if missing.Owner != "nobody" || missing.TotalPoints != 0 {
		t.Errorf("GetAccount(nobody) = %+v, want zero account", missing)
	}
}

func TestInsertUnlockIfAbsent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	u := models.UnlockRecord{Owner: "alice", RewardID: "streak-7", UnlockedAt: testTime}
	inserted, err := store.InsertUnlockIfAbsent(ctx, u)
	if err != nil || !inserted {
		t.Fatalf("first insert = %v, %v; want true", inserted, err)
	}
	inserted, err = store.InsertUnlockIfAbsent(ctx, u)
	if err != nil || inserted {
		t.Fatalf("second insert = %v, %v; want false", inserted, err)
	}

	unlocks, err := store.ListUnlocks(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to list unlocks: %v", err)
	}
	if len(unlocks) != 1 || unlocks[0].RewardID != "streak-7" {
		t.Errorf("ListUnlocks() = %+v", unlocks)
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	addTestHabit(t, store, "h1", "alice", 10)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx storage.Provider) error {
		if _, err := tx.SetCompletion(ctx, mark("h1", "2025-06-15", 10)); err != nil {
			return err
		}
		if _, err := tx.ApplyAccountDelta(ctx, models.PointDelta{Owner: "alice", Points: 10, Day: "2025-06-15"}, testTime); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() error = %v, want boom", err)
	}

	if _, err := store.GetCompletion(ctx, "h1", "2025-06-15"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("completion should have been rolled back, got err %v", err)
	}
	acc, err := store.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to get account: %v", err)
	}
	if acc.TotalPoints != 0 {
		t.Errorf("account should have been rolled back, got %d points", acc.TotalPoints)
	}

	err = store.WithinTx(ctx, func(tx storage.Provider) error {
		_, err := tx.SetCompletion(ctx, mark("h1", "2025-06-15", 10))
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx() commit failed: %v", err)
	}
	if _, err := store.GetCompletion(ctx, "h1", "2025-06-15"); err != nil {
		t.Errorf("committed completion missing: %v", err)
	}
}

func TestActiveHabitNamesUnique(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	h := models.Habit{ID: "h1", Owner: "alice", Name: "Stretch", Category: "general", Points: 10, Active: true, CreatedAt: testTime}
	if err := store.AddHabit(ctx, h); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	dup := h
	dup.ID, dup.Name = "h2", "STRETCH"
	err := store.AddHabit(ctx, dup)
	if !errors.Is(err, apperrors.ErrConstraintViolation) {
		t.Fatalf("AddHabit(duplicate) error = %v, want ErrConstraintViolation", err)
	}
	var liteErr *moderncsqlite.Error
	if !errors.As(err, &liteErr) {
		t.Errorf("driver error not reachable through %v", err)
	}

	other := dup
	other.Owner = "bob"
	if err := store.AddHabit(ctx, other); err != nil {
		t.Errorf("same name for another owner failed: %v", err)
	}

	if err := store.DeactivateHabit(ctx, "h1", testTime); err != nil {
		t.Fatalf("failed to deactivate habit: %v", err)
	}
	dup.ID = "h3"
	if err := store.AddHabit(ctx, dup); err != nil {
		t.Errorf("name of a deactivated habit should be reusable: %v", err)
	}
}
