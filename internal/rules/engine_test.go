package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/models"
)

func reward(id string, t constants.RequirementType, v int) models.Reward {
	return models.Reward{ID: id, Kind: constants.RewardBadge, Name: id, Requirement: models.Requirement{Type: t, Value: v}}
}

func ids(rs []models.Reward) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestEvaluateEachRequirementType(t *testing.T) {
	snap := models.Snapshot{
		TotalPoints:          150,
		BestStreak:           7,
		HabitsCompletedToday: 2,
		WeeklyPoints:         40,
		CurrentLevel:         2,
		HabitCount:           3,
	}

	tests := []struct {
		reqType constants.RequirementType
		met     int
		unmet   int
	}{
		{constants.RequirementTotalPoints, 150, 151},
		{constants.RequirementStreakDays, 7, 8},
		{constants.RequirementHabitsCompletedToday, 2, 3},
		{constants.RequirementWeeklyPoints, 40, 41},
		{constants.RequirementLevel, 2, 3},
		{constants.RequirementHabitCount, 3, 4},
	}

	for _, tt := range tests {
		t.Run(string(tt.reqType), func(t *testing.T) {
			catalog := []models.Reward{reward("met", tt.reqType, tt.met), reward("unmet", tt.reqType, tt.unmet)}
			got := Evaluate(snap, catalog, nil)
			if len(got) != 1 || got[0].ID != "met" {
				t.Errorf("Evaluate() = %v, want [met]", ids(got))
			}
		})
	}
}

func TestEvaluateReturnsAllQualifying(t *testing.T) {
	snap := models.Snapshot{TotalPoints: 120, BestStreak: 3, CurrentLevel: 2}
	catalog := []models.Reward{
		reward("first", constants.RequirementTotalPoints, 1),
		reward("century", constants.RequirementTotalPoints, 100),
		reward("streak-3", constants.RequirementStreakDays, 3),
		reward("level-2", constants.RequirementLevel, 2),
		reward("level-5", constants.RequirementLevel, 5),
	}

	got := Evaluate(snap, catalog, nil)
	want := []string{"first", "century", "streak-3", "level-2"}
	if strings.Join(ids(got), ",") != strings.Join(want, ",") {
		t.Errorf("Evaluate() = %v, want %v", ids(got), want)
	}
}

func TestEvaluateSkipsUnlocked(t *testing.T) {
	snap := models.Snapshot{BestStreak: 7}
	catalog := []models.Reward{reward("streak-7", constants.RequirementStreakDays, 7)}

	first := Evaluate(snap, catalog, nil)
	if len(first) != 1 {
		t.Fatalf("first pass unlocked %d rewards, want 1", len(first))
	}

	unlocked := UnlockedSet([]models.UnlockRecord{{Owner: "alice", RewardID: "streak-7"}})
	snap.BestStreak = 8
	if again := Evaluate(snap, catalog, unlocked); len(again) != 0 {
		t.Errorf("re-evaluation unlocked %v, want none", ids(again))
	}
}

func TestEvaluateUnknownTypeNeverMatches(t *testing.T) {
	catalog := []models.Reward{reward("mystery", constants.RequirementType("moon_phase"), 1)}
	if got := Evaluate(models.Snapshot{TotalPoints: 1000}, catalog, nil); len(got) != 0 {
		t.Errorf("Evaluate() = %v, want none", ids(got))
	}
}

func TestProgress(t *testing.T) {
	r := reward("century", constants.RequirementTotalPoints, 100)

	v, p := Progress(r, models.Snapshot{TotalPoints: 25})
	if v != 25 || p != 0.25 {
		t.Errorf("Progress() = %d, %v, want 25, 0.25", v, p)
	}

	_, p = Progress(r, models.Snapshot{TotalPoints: 400})
	if p != 1 {
		t.Errorf("Progress() should cap at 1, got %v", p)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("failed to load default catalog: %v", err)
	}
	if len(c.Rewards) == 0 {
		t.Fatal("default catalog is empty")
	}
	if _, ok := c.Lookup("streak-7"); !ok {
		t.Error("default catalog should contain streak-7")
	}
	if r, ok := c.Lookup("points-100"); !ok || r.Kind != constants.RewardAchievement {
		t.Errorf("Lookup(points-100) = %+v, %v; want an achievement", r, ok)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "valid with default kind",
			yaml: `
rewards:
  - id: a
    name: A
    requirement: {type: total_points, value: 10}
`,
		},
		{
			name: "duplicate id",
			yaml: `
rewards:
  - id: a
    requirement: {type: total_points, value: 10}
  - id: a
    requirement: {type: level, value: 2}
`,
			wantErr: "duplicate reward id",
		},
		{
			name: "unknown requirement",
			yaml: `
rewards:
  - id: a
    requirement: {type: steps, value: 10}
`,
			wantErr: "unknown requirement type",
		},
		{
			name: "non positive value",
			yaml: `
rewards:
  - id: a
    requirement: {type: level, value: 0}
`,
			wantErr: "must be positive",
		},
		{
			name: "unknown kind",
			yaml: `
rewards:
  - id: a
    kind: trophy
    requirement: {type: level, value: 2}
`,
			wantErr: "unknown kind",
		},
		{
			name:    "malformed yaml",
			yaml:    "rewards: [",
			wantErr: "failed to parse catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Parse() unexpected error: %v", err)
				}
				if c.Rewards[0].Kind != constants.RewardBadge {
					t.Errorf("Kind = %q, want badge", c.Rewards[0].Kind)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	if err != nil || len(c.Rewards) == 0 {
		t.Fatalf("Load(\"\") = %v, %v; want built-in catalog", c, err)
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := "rewards:\n  - id: only\n    kind: achievement\n    requirement: {type: habit_count, value: 1}\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	c, err = Load(path)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	if len(c.Rewards) != 1 || c.Rewards[0].ID != "only" {
		t.Errorf("Load() rewards = %v, want [only]", ids(c.Rewards))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}
