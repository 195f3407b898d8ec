package db

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

const uniqueViolation = "23505"

// IsUnavailable reports whether err means the database could not be reached,
// as opposed to the database rejecting the statement.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsUniqueViolation reports a duplicate key error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Classify tags connectivity failures with shared.ErrUpstreamUnavailable so callers
// can surface them as retryable. Other errors are returned unchanged.
func Classify(err error) error {
	if IsUnavailable(err) && !errors.Is(err, shared.ErrUpstreamUnavailable) {
		return fmt.Errorf("%w: postgres: %v", shared.ErrUpstreamUnavailable, err)
	}
	return err
}
