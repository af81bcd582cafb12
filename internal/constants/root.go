package constants

// RequirementType selects which aggregate a reward threshold is compared against
type RequirementType string

// RewardKind distinguishes badges from achievements in the catalog
type RewardKind string

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "wellkept"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/wellkept/wellkept.db"
	DefaultConfigFile  = "~/.config/wellkept/config.json"
	Version            = "v0.1.0"

	// DateFormat is the calendar day format used for every ledger key (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// EpochDay is the lower bound used when the full completion history is needed
	EpochDay = "0001-01-01"

	// Points and levels
	PointsPerLevel     = 100
	DefaultHabitPoints = 10
	MaxHabitPoints     = 1000

	// CLI defaults
	DefaultLogDays   = 14
	DefaultTimezone  = "Local"
	DefaultAPIListen = "127.0.0.1:8787"
	DefaultCategory  = "general"

	// Requirement types
	RequirementTotalPoints          RequirementType = "total_points"
	RequirementStreakDays           RequirementType = "streak_days"
	RequirementHabitsCompletedToday RequirementType = "habits_completed_today"
	RequirementWeeklyPoints         RequirementType = "weekly_points"
	RequirementLevel                RequirementType = "level"
	RequirementHabitCount           RequirementType = "habit_count"

	// Reward kinds
	RewardBadge       RewardKind = "badge"
	RewardAchievement RewardKind = "achievement"
)

// Session States
const (
	StateHabits SessionState = iota
	StateAddHabit
	StateConfirmDeactivate
)
