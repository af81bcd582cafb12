package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/wellkept/internal/clock"
	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/ledger"
	"github.com/julianstephens/wellkept/internal/rules"
	"github.com/julianstephens/wellkept/internal/storage/memory"
	"github.com/julianstephens/wellkept/internal/tui/components/habits"
)

func setupTestModel(t *testing.T, names ...string) (Model, *ledger.Service) {
	t.Helper()
	cal, err := clock.NewCalendar(clock.NewFakeClock(time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)), "UTC")
	if err != nil {
		t.Fatalf("failed to create calendar: %v", err)
	}
	catalog, err := rules.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	svc := ledger.NewService(memory.NewStore(), cal, catalog)
	for _, n := range names {
		if _, err := svc.CreateHabit(context.Background(), "alice", ledger.HabitInput{Name: n, Points: 10}); err != nil {
			t.Fatalf("failed to create habit: %v", err)
		}
	}

	m := NewModel(svc, "alice")
	m = step(t, m, m.Init())
	return m, svc
}

// step runs cmd synchronously and feeds its message back into the model,
// following any command the update returns.
func step(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 5; i++ {
		msg := cmd()
		if msg == nil {
			return m
		}
		next, c := m.Update(msg)
		m = next.(Model)
		cmd = c
	}
	return m
}

func TestInitLoadsHabits(t *testing.T) {
	m, _ := setupTestModel(t, "Drink water", "Read")
	if got := len(m.habitsModel.Items()); got != 2 {
		t.Fatalf("items = %d, want 2", got)
	}
	if m.account.CurrentLevel != 1 || m.account.ActiveHabits != 2 {
		t.Errorf("account = %+v", m.account)
	}
}

func TestToggleFromList(t *testing.T) {
	m, _ := setupTestModel(t, "Drink water")
	id := m.habitsModel.Items()[0].Stats.Habit.ID

	m = step(t, m, func() tea.Msg { return habits.MarkHabitMsg{ID: id} })
	if !strings.Contains(m.toast, "First Step") {
		t.Errorf("toast = %q, want first-step unlock", m.toast)
	}
	if m.account.TotalPoints != 10 || !m.habitsModel.Items()[0].Stats.DoneToday {
		t.Errorf("after mark: account %+v, item %+v", m.account, m.habitsModel.Items()[0])
	}

	// The same key on a done habit undoes it
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	m = step(t, m, cmd)
	if m.account.TotalPoints != 0 || m.habitsModel.Items()[0].Stats.DoneToday {
		t.Errorf("after toggle: account %+v, item %+v", m.account, m.habitsModel.Items()[0])
	}
	if !strings.Contains(m.toast, "undone") {
		t.Errorf("toast = %q", m.toast)
	}
}

func TestDeactivateConfirmation(t *testing.T) {
	m, svc := setupTestModel(t, "Stretch")
	h := m.habitsModel.Items()[0].Stats.Habit

	m = step(t, m, func() tea.Msg { return habits.DeactivateHabitMsg{ID: h.ID, Name: h.Name} })
	if m.state != constants.StateConfirmDeactivate {
		t.Fatalf("state = %v, want confirm", m.state)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	if m.state != constants.StateHabits {
		t.Fatalf("state after n = %v", m.state)
	}

	m = step(t, m, func() tea.Msg { return habits.DeactivateHabitMsg{ID: h.ID, Name: h.Name} })
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	m = step(t, next.(Model), cmd)

	if len(m.habitsModel.Items()) != 0 {
		t.Errorf("deactivated habit still listed")
	}
	got, err := svc.GetHabit(context.Background(), "alice", h.ID)
	if err != nil || got.Active {
		t.Errorf("habit = %+v, err %v", got, err)
	}
}

func TestToggleErrorShown(t *testing.T) {
	m, _ := setupTestModel(t)
	m = step(t, m, func() tea.Msg { return habits.MarkHabitMsg{ID: "missing"} })
	if m.errMsg == "" {
		t.Error("expected an error message for an unknown habit")
	}
	if !strings.Contains(m.View(), "Error:") {
		t.Error("view should render the error")
	}
}

func TestHabitFormInput(t *testing.T) {
	tests := []struct {
		points  string
		wantErr bool
	}{
		{"10", false},
		{" 25 ", false},
		{"0", true},
		{"abc", true},
		{"1001", true},
	}
	for _, tt := range tests {
		if err := validatePoints(tt.points); (err != nil) != tt.wantErr {
			t.Errorf("validatePoints(%q) error = %v, wantErr %v", tt.points, err, tt.wantErr)
		}
	}

	fm := &HabitFormModel{Name: "  Walk ", Category: "health", Points: "15"}
	in := fm.input()
	if in.Name != "Walk" || in.Points != 15 || in.Category != "health" {
		t.Errorf("input() = %+v", in)
	}
}

func TestQuit(t *testing.T) {
	m, _ := setupTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !next.(Model).quitting || cmd == nil {
		t.Error("q should quit")
	}
}
