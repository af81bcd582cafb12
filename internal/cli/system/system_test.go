package system

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/wellkept/internal/cli"
	"github.com/julianstephens/wellkept/internal/clock"
	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/rules"
	"github.com/julianstephens/wellkept/internal/storage/sqlite"
)

// setupTestContext returns a command context over an uninitialized sqlite file
func setupTestContext(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)

	cal, err := clock.NewCalendar(clock.NewFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)), "UTC")
	if err != nil {
		t.Fatalf("failed to create calendar: %v", err)
	}
	catalog, err := rules.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Store:   store,
		Service: ledger.NewService(store, cal, catalog),
		Owner:   "alice",
		Out:     out,
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, store, out
}

func setupInitializedContext(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	ctx, store, out := setupTestContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out.Reset()
	return ctx, store, out
}

func markOnce(t *testing.T, ctx *cli.Context) {
	t.Helper()
	bg := context.Background()
	h, err := ctx.Service.CreateHabit(bg, ctx.Owner, ledger.HabitInput{Name: "Drink water", Points: 10})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if _, err := ctx.Service.MarkHabitDone(bg, ctx.Owner, h.ID, ctx.Service.Today(), ""); err != nil {
		t.Fatalf("failed to mark habit: %v", err)
	}
}
