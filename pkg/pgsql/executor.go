package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/kylerisse/pgmetric/pkg/projection"
)

// ErrClosed is returned by Query after Close.
var ErrClosed = errors.New("pgsql: executor is closed")

// DefaultTimeout bounds connecting and querying when no timeout is set.
const DefaultTimeout = 10 * time.Second

// Executor runs queries over a single database connection.
type Executor struct {
	db      *sql.DB
	connStr string // registered pgx config key, empty for NewFromDB
	timeout time.Duration
	lookup  pgconn.LookupFunc
	logger  *logrus.Logger
}

// Option is a functional option for configuring an Executor.
type Option func(*Executor) error

// WithTimeout sets the per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		e.timeout = d
		return nil
	}
}

// WithLookupFunc replaces the resolver pgx uses for the database host.
func WithLookupFunc(fn pgconn.LookupFunc) Option {
	return func(e *Executor) error {
		e.lookup = fn
		return nil
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Executor) error {
		if l == nil {
			return fmt.Errorf("logger must not be nil")
		}
		e.logger = l
		return nil
	}
}

func newExecutor(opts []Option) (*Executor, error) {
	e := &Executor{timeout: DefaultTimeout}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("pgsql: %w", err)
		}
	}
	if e.logger == nil {
		e.logger = logrus.New()
		e.logger.SetOutput(io.Discard)
	}
	return e, nil
}

// Open connects to the database described by params and verifies the
// connection with a ping. On error nothing is left open.
func Open(ctx context.Context, params ConnParams, opts ...Option) (*Executor, error) {
	e, err := newExecutor(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := params.connConfig()
	if err != nil {
		return nil, err
	}
	if params.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = e.timeout
	}
	if e.lookup != nil {
		cfg.LookupFunc = e.lookup
	}

	e.connStr = stdlib.RegisterConnConfig(cfg)
	db, err := sql.Open("pgx", e.connStr)
	if err != nil {
		stdlib.UnregisterConnConfig(e.connStr)
		return nil, fmt.Errorf("error on opening a connection with the Postgres database [%s]: %w", params, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	e.db = db

	pctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.Debugf("connecting to %s", params)
	if err := db.PingContext(pctx); err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("error on pinging the Postgres database [%s]: %w", params, err)
	}

	return e, nil
}

// NewFromDB wraps an already opened database handle.
func NewFromDB(db *sql.DB, opts ...Option) (*Executor, error) {
	if db == nil {
		return nil, fmt.Errorf("pgsql: db must not be nil")
	}
	e, err := newExecutor(opts)
	if err != nil {
		return nil, err
	}
	e.db = db
	return e, nil
}

// Query runs text verbatim and returns the complete result.
// A failure at any point discards the partial result.
func (e *Executor) Query(ctx context.Context, text string) (projection.Result, error) {
	if e.db == nil {
		return projection.Result{}, ErrClosed
	}

	qctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.Debugf("executing query: %s", text)

	start := time.Now()
	rows, err := e.db.QueryContext(qctx, text)
	if err != nil {
		return projection.Result{}, err
	}
	defer func() { _ = rows.Close() }()

	res, err := readRows(rows)
	if err != nil {
		return projection.Result{}, err
	}

	e.logger.Debugf("query returned %d row(s) in %v", res.RowCount(), time.Since(start))
	return res, nil
}

// Close releases the connection. It is safe to call more than once.
func (e *Executor) Close() error {
	var err error
	if e.db != nil {
		err = e.db.Close()
		e.db = nil
	}
	if e.connStr != "" {
		stdlib.UnregisterConnConfig(e.connStr)
		e.connStr = ""
	}
	return err
}
