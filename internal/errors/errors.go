package errors

import (
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"os"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/wellkept/internal/logger"
)

var (
	// ErrNotFound is returned when a habit or account does not exist or belongs to another owner
	ErrNotFound = stderrors.New("not found")
	// ErrInvalidDay is returned for malformed dates and dates after today
	ErrInvalidDay = stderrors.New("invalid day")
	// ErrConstraintViolation marks a uniqueness conflict at the storage boundary
	ErrConstraintViolation = stderrors.New("constraint violation")
	// ErrStorageUnavailable is returned when the persistence backend cannot be reached
	ErrStorageUnavailable = stderrors.New("storage unavailable")
	// ErrHabitInactive is returned when a completion is toggled on a deactivated habit
	ErrHabitInactive = stderrors.New("habit is inactive")
	// ErrInvalidHabit is returned when a habit definition fails validation
	ErrInvalidHabit = stderrors.New("invalid habit")
)

// IsRetryable reports whether the caller may retry the whole operation
func IsRetryable(err error) bool {
	return stderrors.Is(err, ErrStorageUnavailable)
}

// IsNotFound reports whether err is, or wraps, ErrNotFound or sql.ErrNoRows
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound) || stderrors.Is(err, sql.ErrNoRows)
}

// Classify maps a raw storage error onto the domain taxonomy.
// Errors that are already classified are returned unchanged. The driver
// error stays reachable through errors.As.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, ErrNotFound),
		stderrors.Is(err, ErrInvalidDay),
		stderrors.Is(err, ErrConstraintViolation),
		stderrors.Is(err, ErrStorageUnavailable),
		stderrors.Is(err, ErrHabitInactive),
		stderrors.Is(err, ErrInvalidHabit):
		return err
	case stderrors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case stderrors.Is(err, sql.ErrConnDone), stderrors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23": // integrity_constraint_violation
			return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
		case "08", "53", "57": // connection_exception, insufficient_resources, operator_intervention
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		// serialization_failure, deadlock_detected
		if pqErr.Code == "40001" || pqErr.Code == "40P01" {
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		return err
	}

	var liteErr *sqlite.Error
	if stderrors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %w", ErrConstraintViolation, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN:
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return err
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	if IsRetryable(err) {
		return fmt.Sprintf("Error: %v (temporary, try again)", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
