package system

import (
	"encoding/json"
	"testing"

	"github.com/julianstephens/wellkept/internal/models"
)

func TestInspectDBPathCmd(t *testing.T) {
	ctx, store, out := setupInitializedContext(t)

	if err := (&InspectDBPathCmd{}).Run(ctx); err != nil {
		t.Fatalf("db-path failed: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["path"] != store.GetConfigPath() {
		t.Errorf("path = %q, want %q", got["path"], store.GetConfigPath())
	}
}

func TestInspectHabitCmd(t *testing.T) {
	ctx, _, out := setupInitializedContext(t)
	markOnce(t, ctx)
	out.Reset()

	if err := (&InspectHabitCmd{Habit: "drink water"}).Run(ctx); err != nil {
		t.Fatalf("dump-habit failed: %v", err)
	}
	var got struct {
		Habit       models.Habit              `json:"habit"`
		Completions []models.CompletionRecord `json:"completions"`
		Streak      models.StreakState        `json:"streak"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Habit.Name != "Drink water" || len(got.Completions) != 1 || got.Streak.CurrentStreak != 1 {
		t.Errorf("dump = %+v", got)
	}

	if err := (&InspectHabitCmd{Habit: "missing"}).Run(ctx); err == nil {
		t.Error("expected an error for an unknown habit")
	}
}

func TestInspectAccountCmd(t *testing.T) {
	ctx, _, out := setupInitializedContext(t)
	markOnce(t, ctx)
	out.Reset()

	if err := (&InspectAccountCmd{}).Run(ctx); err != nil {
		t.Fatalf("dump-account failed: %v", err)
	}
	var got struct {
		Account models.Account        `json:"account"`
		Unlocks []models.UnlockRecord `json:"unlocks"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Account.TotalPoints != 10 || len(got.Unlocks) == 0 {
		t.Errorf("dump = %+v", got)
	}
}
