package persistence

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/comufarm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps storage failures onto the domain taxonomy so callers
// never see driver errors. Domain errors pass through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return shared.ErrConflict
	case isOutOfRange(err):
		return ErrValueOutOfRange
	case errors.Is(err, context.DeadlineExceeded):
		return shared.ErrTimeout
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, driver.ErrBadConn), isNetError(err), isConnectionFailure(err):
		return shared.ErrUnavailable
	}
	return err
}

// ErrValueOutOfRange reports a value too large for its column
var ErrValueOutOfRange = shared.NewDomainError(shared.CodeValidation, "Value exceeds the storable range")

func isOutOfRange(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlstate 22003") ||
		strings.Contains(msg, "numeric field overflow") ||
		strings.Contains(msg, "out of range for type")
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

func isNetError(err error) bool {
	var ne net.Error
	return errors.As(err, &ne)
}

func isConnectionFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"sql: database is closed",
		"database is locked",
		"failed to connect",
		"sqlstate 57p01",
		"sqlstate 08006",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
