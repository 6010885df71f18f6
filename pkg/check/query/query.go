// Package query implements the SQL query check.
//
// The check runs one configured query through an executor, classifies any
// failure as an unknown outcome, and projects the rows onto metric names
// using the configured mode and scheme.
package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kylerisse/pgmetric/pkg/check"
	"github.com/kylerisse/pgmetric/pkg/pgsql"
	"github.com/kylerisse/pgmetric/pkg/projection"
)

// TypeName is the registered name for this check type.
const TypeName = "query"

// Executor runs a query and returns the complete result.
type Executor interface {
	Query(ctx context.Context, text string) (projection.Result, error)
}

// Check implements check.Check for a single SQL query.
type Check struct {
	exec    Executor
	text    string
	mode    projection.Mode
	scheme  string
	columns []string
	desc    check.Descriptor
	logger  *logrus.Logger
	now     func() time.Time
}

var _ check.Check = (*Check)(nil)

// Option is a functional option for configuring a query Check.
type Option func(*Check) error

// WithMode sets the projection mode. The default is single-row.
func WithMode(m projection.Mode) Option {
	return func(c *Check) error {
		c.mode = m
		return nil
	}
}

// WithColumns sets the metric name suffixes used in multi-row mode.
func WithColumns(cols []string) Option {
	return func(c *Check) error {
		for i, col := range cols {
			if col == "" {
				return fmt.Errorf("column name %d is empty", i)
			}
		}
		c.columns = append([]string(nil), cols...)
		return nil
	}
}

// WithDescriptor attaches the preset the query came from.
func WithDescriptor(d check.Descriptor) Option {
	return func(c *Check) error {
		c.desc = d
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Check) error {
		if l == nil {
			return fmt.Errorf("logger must not be nil")
		}
		c.logger = l
		return nil
	}
}

// WithClock overrides the time source used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(c *Check) error {
		c.now = now
		return nil
	}
}

// New creates a query Check.
func New(exec Executor, text, scheme string, opts ...Option) (*Check, error) {
	if exec == nil {
		return nil, fmt.Errorf("query: executor must not be nil")
	}
	if text == "" {
		return nil, fmt.Errorf("query: query text must not be empty")
	}
	if scheme == "" {
		return nil, fmt.Errorf("query: scheme must not be empty")
	}

	c := &Check{
		exec:   exec,
		text:   text,
		scheme: scheme,
		mode:   projection.SingleRow,
		now:    time.Now,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
	}

	if c.mode == projection.MultiRow && len(c.columns) == 0 {
		return nil, fmt.Errorf("query: multi-row mode needs at least one column name")
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetOutput(io.Discard)
	}

	return c, nil
}

// Type returns the check type name.
func (c *Check) Type() string {
	return TypeName
}

// Describe returns the Descriptor for this check instance.
func (c *Check) Describe() check.Descriptor {
	return c.desc
}

// Run executes the query once and returns a Result.
//
// Any executor failure yields StatusUnknown with no emissions. A result
// whose shape does not fit the configured column names also yields
// StatusUnknown. An empty result is a valid OK outcome with no emissions.
func (c *Check) Run(ctx context.Context) check.Result {
	now := c.now()

	res, err := c.exec.Query(ctx, c.text)
	if err != nil {
		f := pgsql.Classify(err)
		c.logger.WithField("cause", f.Cause).Debugf("query failed: %v", err)
		return check.Result{
			Timestamp: now,
			Status:    check.StatusUnknown,
			Err:       f,
		}
	}

	emissions, err := projection.Project(res, c.mode, c.scheme, c.columns)
	if err != nil {
		if errors.Is(err, projection.ErrShapeMismatch) {
			err = fmt.Errorf("%w (check --columns against the query)", err)
		}
		return check.Result{
			Timestamp: now,
			Status:    check.StatusUnknown,
			Err:       err,
		}
	}

	if len(emissions) == 0 {
		c.logger.Infof("query returned no rows in %s mode, nothing to emit", c.mode)
	}

	return check.Result{
		Timestamp: now,
		Status:    check.StatusOK,
		Emissions: emissions,
	}
}
