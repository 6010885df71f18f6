package output

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/kylerisse/pgmetric/pkg/check"
	"github.com/kylerisse/pgmetric/pkg/projection"
)

// RowLabel distinguishes repeated metric names, as produced by multi-row
// queries. It holds the occurrence index of the name, starting at 0.
const RowLabel = "row"

// Textfile writes emissions to a file in the Prometheus text exposition
// format, for the node_exporter textfile collector. Only numeric values are
// written.
type Textfile struct {
	path    string
	metrics []check.MetricDef
	logger  *logrus.Logger
}

// NewTextfile creates a Textfile emitter writing to path. metrics describes
// the columns of the preset the query came from and may be nil; a metric
// whose name ends in one of their suffixes gets that description as HELP.
func NewTextfile(path string, metrics []check.MetricDef, logger *logrus.Logger) (*Textfile, error) {
	if path == "" {
		return nil, fmt.Errorf("textfile: path must not be empty")
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Textfile{
		path:    path,
		metrics: append([]check.MetricDef(nil), metrics...),
		logger:  logger,
	}, nil
}

// help returns the HELP text for the metric originally named name.
func (t *Textfile) help(name string) string {
	for _, m := range t.metrics {
		if m.Label != "" && strings.HasSuffix(name, "."+m.Suffix) {
			return fmt.Sprintf("%s, from %s.", m.Help(), name)
		}
	}
	return fmt.Sprintf("Value of %s.", name)
}

// Name returns the target path.
func (t *Textfile) Name() string {
	return "textfile " + t.path
}

// Emit replaces the file with one gauge sample per numeric emission. The
// file is written atomically.
func (t *Textfile) Emit(_ context.Context, _ time.Time, emissions []projection.Emission) error {
	reg := prometheus.NewRegistry()
	gauges := make(map[string]*prometheus.GaugeVec)
	seen := make(map[string]int)

	for _, e := range emissions {
		if e.Value.Kind() != projection.KindNumeric {
			t.logger.Debugf("textfile: skipping %s: %s value", e.Name, e.Value.Kind())
			continue
		}
		v, err := strconv.ParseFloat(e.Value.String(), 64)
		if err != nil {
			t.logger.Warnf("textfile: skipping %s: %v", e.Name, err)
			continue
		}

		name := MetricName(e.Name)
		g, ok := gauges[name]
		if !ok {
			g = prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: name,
				Help: t.help(e.Name),
			}, []string{RowLabel})
			if err := reg.Register(g); err != nil {
				return fmt.Errorf("textfile: %w", err)
			}
			gauges[name] = g
		}

		g.WithLabelValues(strconv.Itoa(seen[name])).Set(v)
		seen[name]++
	}

	if err := prometheus.WriteToTextfile(t.path, reg); err != nil {
		return fmt.Errorf("textfile: %w", err)
	}
	return nil
}

// Close is a no-op; every Emit writes a complete file.
func (t *Textfile) Close() error {
	return nil
}

// MetricName maps a dotted metric name onto a valid Prometheus name by
// replacing every other character with an underscore.
func MetricName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == ':',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
