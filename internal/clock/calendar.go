package clock

import (
	"fmt"
	"time"

	"github.com/julianstephens/wellkept/internal/constants"
	apperrors "github.com/julianstephens/wellkept/internal/errors"
)

// Calendar answers "what day is it" for a fixed timezone.
// Days are always YYYY-MM-DD strings so they compare lexically.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

// NewCalendar builds a calendar for the given IANA timezone ("" or "Local" = system zone)
func NewCalendar(c Clock, timezone string) (*Calendar, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	if c == nil {
		c = RealClock{}
	}
	return &Calendar{clock: c, loc: loc}, nil
}

// Now returns the current instant in the calendar's timezone
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// Today returns the current calendar day
func (c *Calendar) Today() string {
	return c.Now().Format(constants.DateFormat)
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// ValidateDay rejects malformed days and days after today
func (c *Calendar) ValidateDay(day string) error {
	if _, err := ParseDay(day); err != nil {
		return err
	}
	if day > c.Today() {
		return fmt.Errorf("%w: %s is in the future", apperrors.ErrInvalidDay, day)
	}
	return nil
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ParseDay parses a YYYY-MM-DD day. The result is midnight UTC, which keeps day arithmetic free of DST shifts.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", apperrors.ErrInvalidDay, day)
	}
	return t, nil
}

// AddDays shifts a day by n calendar days. Malformed input is returned unchanged.
func AddDays(day string, n int) string {
	t, err := ParseDay(day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat)
}

// Weekday returns the day of week for a day
func Weekday(day string) (time.Weekday, error) {
	t, err := ParseDay(day)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}

// WeekStart returns the Monday of the ISO week containing day
func WeekStart(day string) string {
	t, err := ParseDay(day)
	if err != nil {
		return day
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(constants.DateFormat)
}

// MonthStart returns the first day of the month containing day
func MonthStart(day string) string {
	t, err := ParseDay(day)
	if err != nil {
		return day
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat)
}

// Range returns every day from start to end inclusive, oldest first
func Range(start, end string) []string {
	from, err := ParseDay(start)
	if err != nil {
		return nil
	}
	to, err := ParseDay(end)
	if err != nil || to.Before(from) {
		return nil
	}
	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(constants.DateFormat))
	}
	return days
}
