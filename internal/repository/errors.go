package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrConstraint      = errors.New("constraint violation")
	ErrUnavailable     = errors.New("storage unavailable")
)

// classify maps driver errors onto the package sentinels. SQLSTATE class 23
// is an integrity violation; classes 42 (syntax or missing relation) and 08
// (connection) mean the store cannot serve the request at all.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrBookingNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "23":
			return fmt.Errorf("%s: %w: %s", op, ErrConstraint, pgErr.ConstraintName)
		case "42", "08":
			return fmt.Errorf("%s: %w: %s", op, ErrUnavailable, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsSchemaError reports whether err means the backing schema is missing or
// the database is unreachable, in which case callers fall back to defaults.
func IsSchemaError(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		class := pgErr.Code[:2]
		return class == "42" || class == "08"
	}
	return false
}
