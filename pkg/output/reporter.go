package output

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/kylerisse/pgmetric/pkg/check"
	"github.com/kylerisse/pgmetric/pkg/projection"
)

// DefaultName prefixes status messages when no name is configured.
const DefaultName = "PostgresMetric"

// Reporter writes check results for a monitoring agent.
type Reporter struct {
	out      io.Writer
	name     string
	emitters []Emitter
	logger   *logrus.Logger
}

// Option is a functional option for configuring a Reporter.
type Option func(*Reporter) error

// WithName sets the name printed in front of status messages.
func WithName(name string) Option {
	return func(r *Reporter) error {
		if name == "" {
			return fmt.Errorf("name must not be empty")
		}
		r.name = name
		return nil
	}
}

// WithEmitter adds an emitter that receives the emissions after stdout.
func WithEmitter(e Emitter) Option {
	return func(r *Reporter) error {
		if e == nil {
			return fmt.Errorf("emitter must not be nil")
		}
		r.emitters = append(r.emitters, e)
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(r *Reporter) error {
		if l == nil {
			return fmt.Errorf("logger must not be nil")
		}
		r.logger = l
		return nil
	}
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer, opts ...Option) (*Reporter, error) {
	if out == nil {
		return nil, fmt.Errorf("output: writer must not be nil")
	}
	r := &Reporter{
		out:  out,
		name: DefaultName,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
	}
	if r.logger == nil {
		r.logger = logrus.New()
		r.logger.SetOutput(io.Discard)
	}
	return r, nil
}

// Report writes res and returns the exit code for the process. Every
// emitter is closed before Report returns.
//
// An OK result prints one metric line per non-null emission and nothing
// else, then hands the same emissions to the emitters. Any other result
// prints a single "<name> <STATUS>: <message>" line and no metric lines.
func (r *Reporter) Report(ctx context.Context, res check.Result) int {
	defer r.closeEmitters()

	if res.Status != check.StatusOK {
		return r.status(res.Status, res.Message())
	}

	emissions := r.skipNulls(res.Emissions)
	for _, e := range emissions {
		if err := WriteLine(r.out, e, res.Timestamp); err != nil {
			r.logger.Errorf("writing metric line: %v", err)
			return check.StatusUnknown.ExitCode()
		}
	}

	// emitter failures are logged only; stdout already holds the result
	for _, em := range r.emitters {
		if err := em.Emit(ctx, res.Timestamp, emissions); err != nil {
			r.logger.WithField("emitter", em.Name()).Errorf("emit failed: %v", err)
			continue
		}
		r.logger.WithField("emitter", em.Name()).Debugf("emitted %d metric(s)", len(emissions))
	}

	return check.StatusOK.ExitCode()
}

// Fail reports err as an unknown outcome, for failures that happen before a
// check could run.
func (r *Reporter) Fail(err error) int {
	defer r.closeEmitters()
	return r.status(check.StatusUnknown, err.Error())
}

func (r *Reporter) status(s check.Status, msg string) int {
	if _, err := fmt.Fprintf(r.out, "%s %s: %s\n", r.name, s, msg); err != nil {
		r.logger.Errorf("writing status message: %v", err)
	}
	return s.ExitCode()
}

// skipNulls drops null values; a metric line needs a value.
func (r *Reporter) skipNulls(in []projection.Emission) []projection.Emission {
	out := make([]projection.Emission, 0, len(in))
	for _, e := range in {
		if e.Value.IsNull() {
			r.logger.Warnf("skipping %s: value is null", e.Name)
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r *Reporter) closeEmitters() {
	for _, em := range r.emitters {
		if err := em.Close(); err != nil {
			r.logger.WithField("emitter", em.Name()).Warnf("close failed: %v", err)
		}
	}
	r.emitters = nil
}
