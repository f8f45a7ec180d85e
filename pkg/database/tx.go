package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgreSQL error codes that signal a retryable conflict
const (
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// ErrLockTimeout is returned when a row lock could not be acquired in time
var ErrLockTimeout = errors.New("lock wait timeout, retry the operation")

// ForUpdate is the row-locking clause used before any read-then-write
var ForUpdate = clause.Locking{Strength: "UPDATE"}

// SetLockTimeout bounds how long statements in tx wait for row locks.
// Only PostgreSQL supports it; other dialects (SQLite in tests) serialize writers anyway.
func SetLockTimeout(tx *gorm.DB, timeout time.Duration) error {
	if timeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}
	return nil
}

// IsRetryable reports whether err is a lock timeout, serialization failure or deadlock
func IsRetryable(err error) bool {
	if errors.Is(err, ErrLockTimeout) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
			return true
		}
	}
	return false
}

// Translate maps driver-level conflicts onto ErrLockTimeout and leaves other errors alone
func Translate(err error) error {
	if err == nil || errors.Is(err, ErrLockTimeout) {
		return err
	}
	if IsRetryable(err) {
		return fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}
	return err
}
