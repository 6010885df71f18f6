package pgsql

import (
	"context"
	"errors"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Cause is a diagnostic hint about why a query failed. Every cause leads to
// the same outcome; it only makes logs more useful.
type Cause string

const (
	CauseConnectionRefused Cause = "connection refused"
	CauseAuthentication    Cause = "authentication rejected"
	CauseTimeout           Cause = "timeout exceeded"
	CauseQuery             Cause = "query error"
	CauseOther             Cause = "other"
)

// Failure is the single outcome for anything that went wrong while
// connecting to the database or running the query.
type Failure struct {
	Cause   Cause
	Message string
	err     error
}

func (f *Failure) Error() string {
	return "query execution failed: " + f.Message
}

func (f *Failure) Unwrap() error {
	return f.err
}

// Classify maps any executor error onto a Failure carrying the underlying
// message verbatim. It returns nil for a nil error.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{
		Cause:   causeOf(err),
		Message: err.Error(),
		err:     err,
	}
}

func causeOf(err error) Cause {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000":
			return CauseAuthentication
		case "57014":
			return CauseTimeout
		default:
			return CauseQuery
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return CauseTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return CauseConnectionRefused
	default:
		return CauseOther
	}
}
