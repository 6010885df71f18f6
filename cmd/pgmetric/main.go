// Command pgmetric runs one query against PostgreSQL and prints the result
// as Graphite plaintext metric lines for a monitoring agent.
//
// Exit codes follow the Nagios/Sensu plugin convention: 0 when the metrics
// were written, 3 (unknown) when they could not be determined.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kylerisse/pgmetric/pkg/check"
	"github.com/kylerisse/pgmetric/pkg/check/query"
	"github.com/kylerisse/pgmetric/pkg/config"
	"github.com/kylerisse/pgmetric/pkg/output"
	"github.com/kylerisse/pgmetric/pkg/pgsql"
	"github.com/kylerisse/pgmetric/pkg/resolver"
)

const name = "pgmetric"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := config.Parse(name, args)
	if err != nil {
		if config.IsHelp(err) {
			fmt.Fprintln(stdout, err)
			return check.StatusOK.ExitCode()
		}
		fmt.Fprintln(stderr, err)
		return fail(stdout, err)
	}
	if opts.Version {
		fmt.Fprintf(stdout, "%s %s\n", name, version)
		return check.StatusOK.ExitCode()
	}

	logger := newLogger(stderr, opts.Debug)

	reg, err := query.NewRegistry()
	if err != nil {
		return fail(stdout, err)
	}
	if opts.ListPresets {
		listPresets(stdout, reg)
		return check.StatusOK.ExitCode()
	}
	cfg, err := config.Load(opts, reg)
	if err != nil {
		return fail(stdout, err)
	}
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	reporter, err := newReporter(cfg, stdout, logger)
	if err != nil {
		return fail(stdout, err)
	}

	res := execute(ctx, cfg, logger)
	return reporter.Report(ctx, res)
}

// execute connects, runs the configured query once and closes the
// connection before returning.
func execute(ctx context.Context, cfg config.Config, logger *logrus.Logger) check.Result {
	execOpts := []pgsql.Option{
		pgsql.WithTimeout(cfg.Timeout),
		pgsql.WithLogger(logger),
	}

	if cfg.DNSServer != "" {
		r, err := resolver.New(cfg.DNSServer, resolver.WithLogger(logger))
		if err != nil {
			return unknown(err)
		}
		logger.Debugf("resolving %s via %s", cfg.Conn.Host, r.Server())
		execOpts = append(execOpts, pgsql.WithLookupFunc(r.LookupHost))
	}

	exec, err := pgsql.Open(ctx, cfg.Conn, execOpts...)
	if err != nil {
		f := pgsql.Classify(err)
		logger.WithField("cause", f.Cause).Debugf("connect failed: %v", err)
		return unknown(f)
	}
	defer func() {
		if err := exec.Close(); err != nil {
			logger.Warnf("closing connection: %v", err)
		}
	}()

	chk, err := newCheck(exec, cfg, logger)
	if err != nil {
		return unknown(err)
	}

	entry := logger.WithField("type", chk.Type())
	if cfg.Preset != "" {
		entry = entry.WithField("preset", cfg.Preset)
	}
	entry.Debugf("running %s (%s mode) as %s", chk.Describe().Label, cfg.Mode, cfg.Scheme)
	return chk.Run(ctx)
}

func newCheck(exec query.Executor, cfg config.Config, logger *logrus.Logger) (check.Check, error) {
	return query.New(exec, cfg.Query, cfg.Scheme,
		query.WithMode(cfg.Mode),
		query.WithColumns(cfg.Columns()),
		query.WithDescriptor(cfg.Descriptor),
		query.WithLogger(logger),
	)
}

// listPresets prints every built-in query with the metrics its columns
// map to in multi-row mode.
func listPresets(w io.Writer, reg *check.Registry) {
	for _, preset := range reg.Types() {
		desc, err := reg.Describe(preset)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", preset, desc.Label)
		for _, m := range desc.Metrics {
			fmt.Fprintf(w, "  %-12s %s\n", m.Suffix, m.Help())
		}
	}
}

func newReporter(cfg config.Config, stdout io.Writer, logger *logrus.Logger) (*output.Reporter, error) {
	opts := []output.Option{output.WithLogger(logger)}

	if cfg.Carbon != "" {
		c, err := output.NewCarbon(cfg.Carbon,
			output.WithRate(cfg.CarbonRate),
			output.WithCarbonTimeout(cfg.Timeout),
			output.WithCarbonLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, output.WithEmitter(c))
	}
	if cfg.Textfile != "" {
		var metrics []check.MetricDef
		if cfg.Preset != "" {
			metrics = cfg.Descriptor.Metrics
		}
		tf, err := output.NewTextfile(cfg.Textfile, metrics, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, output.WithEmitter(tf))
	}

	return output.NewReporter(stdout, opts...)
}

func newLogger(w io.Writer, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func unknown(err error) check.Result {
	return check.Result{
		Timestamp: time.Now(),
		Status:    check.StatusUnknown,
		Err:       err,
	}
}

// fail reports an error that happened before the query could run.
func fail(stdout io.Writer, err error) int {
	reporter, rerr := output.NewReporter(stdout)
	if rerr != nil {
		return check.StatusUnknown.ExitCode()
	}
	return reporter.Fail(err)
}
