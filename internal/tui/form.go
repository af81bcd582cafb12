package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/ledger"
)

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewInput().
				Title("Category").
				Value(&fm.Category),
			huh.NewInput().
				Title("Points per completion").
				Value(&fm.Points).
				Validate(validatePoints),
		),
	).WithTheme(huh.ThemeDracula())
}

func validatePoints(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("points must be a whole number")
	}
	if n < 1 || n > constants.MaxHabitPoints {
		return fmt.Errorf("points must be between 1 and %d", constants.MaxHabitPoints)
	}
	return nil
}

func (fm *HabitFormModel) input() ledger.HabitInput {
	// validatePoints has already run
	points, _ := strconv.Atoi(strings.TrimSpace(fm.Points))
	return ledger.HabitInput{
		Name:        strings.TrimSpace(fm.Name),
		Description: strings.TrimSpace(fm.Description),
		Category:    strings.TrimSpace(fm.Category),
		Points:      points,
	}
}
