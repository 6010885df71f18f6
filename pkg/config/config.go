package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/kylerisse/pgmetric/pkg/check"
	"github.com/kylerisse/pgmetric/pkg/check/query"
	"github.com/kylerisse/pgmetric/pkg/pgsql"
	"github.com/kylerisse/pgmetric/pkg/projection"
)

// SchemeSuffix is appended to the local host name to form the default scheme.
const SchemeSuffix = ".postgresql"

// presetFor maps --bloat choices to preset names.
var presetFor = map[string]string{
	"table": query.PresetTableBloat,
	"index": query.PresetIndexBloat,
}

var sslModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Config is the resolved configuration of one probe run. It is built once
// by Load and only read afterwards.
type Config struct {
	Conn pgsql.ConnParams

	// Query is the SQL text to run. Preset names the preset it came from
	// and is empty for a query given with --query.
	Query      string
	Preset     string
	Descriptor check.Descriptor

	Mode    projection.Mode
	Scheme  string
	Timeout time.Duration

	DNSServer  string
	Carbon     string
	CarbonRate float64
	Textfile   string
	Debug      bool

	columns []string
}

// Columns returns a copy of the metric suffixes used in multi-row mode.
func (c Config) Columns() []string {
	return append([]string(nil), c.columns...)
}

// Load resolves opts into a Config: it merges the config file and the pgpass
// file, picks the query preset from reg and validates the result. Every
// validation problem is reported at once.
func Load(opts *Options, reg *check.Registry) (Config, error) {
	if opts.explicit == nil {
		opts.explicit = make(map[string]bool)
	}
	if opts.fromFile == nil {
		opts.fromFile = make(map[string]bool)
	}

	if opts.ConfigFile != "" {
		fc, err := ReadFile(opts.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		fc.apply(opts)
	}

	if err := applyPgpass(opts); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg := Config{
		Conn: pgsql.ConnParams{
			Host:     opts.Hostname,
			Port:     opts.Port,
			Database: opts.Database,
			User:     opts.User,
			Password: opts.Password,
			SSLMode:  opts.SSLMode,
		},
		Query:      opts.Query,
		Mode:       projection.NewMode(opts.Tuples, opts.Multirow),
		Scheme:     opts.Scheme,
		Timeout:    time.Duration(opts.Timeout) * time.Second,
		DNSServer:  opts.DNSServer,
		Carbon:     opts.Carbon,
		CarbonRate: opts.CarbonRate,
		Textfile:   opts.Textfile,
		Debug:      opts.Debug,
	}
	cfg.Conn.ConnectTimeout = cfg.Timeout

	var errs []error

	if cfg.Query == "" {
		name, ok := presetFor[opts.Bloat]
		if !ok {
			errs = append(errs, fmt.Errorf("bloat must be 'table' or 'index', got %q", opts.Bloat))
		} else if desc, err := reg.Describe(name); err != nil {
			errs = append(errs, err)
		} else {
			cfg.Query = desc.Query
			cfg.Preset = name
			cfg.Descriptor = desc
		}
	} else {
		cfg.Descriptor = check.Descriptor{Label: "custom query", Query: cfg.Query}
	}

	switch {
	case opts.Columns != "":
		cfg.columns = splitColumns(opts.Columns)
	case opts.fileColumns != nil:
		cfg.columns = append([]string(nil), opts.fileColumns...)
	default:
		cfg.columns = cfg.Descriptor.Columns()
	}

	if cfg.Scheme == "" {
		host, err := os.Hostname()
		if err != nil {
			errs = append(errs, fmt.Errorf("scheme is not set and the host name is unknown: %w", err))
		} else {
			cfg.Scheme = host + SchemeSuffix
		}
	}

	if err := cfg.validate(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	if c.Conn.Host == "" {
		errs = append(errs, errors.New("hostname must be set"))
	}
	if c.Conn.Port <= 0 || c.Conn.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.Conn.Port))
	}
	if !sslModes[c.Conn.SSLMode] {
		errs = append(errs, fmt.Errorf("unknown sslmode %q", c.Conn.SSLMode))
	}
	if c.Conn.Database == "" {
		errs = append(errs, errors.New("database must be set"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be a positive number of seconds, got %v", c.Timeout))
	}
	if c.Mode == projection.MultiRow && len(c.columns) == 0 {
		errs = append(errs, errors.New("multirow needs column names (--columns)"))
	}
	for i, col := range c.columns {
		if col == "" {
			errs = append(errs, fmt.Errorf("column name %d is empty", i))
		}
	}
	if c.DNSServer != "" && strings.TrimSpace(c.DNSServer) != c.DNSServer {
		errs = append(errs, fmt.Errorf("dns server %q has surrounding spaces", c.DNSServer))
	}
	if c.Carbon != "" {
		if _, _, err := net.SplitHostPort(c.Carbon); err != nil {
			errs = append(errs, fmt.Errorf("carbon address %q: %w", c.Carbon, err))
		}
	}
	if c.CarbonRate < 0 {
		errs = append(errs, fmt.Errorf("carbon rate must not be negative, got %v", c.CarbonRate))
	}

	return errors.Join(errs...)
}

func splitColumns(s string) []string {
	parts := strings.Split(s, ",")
	cols := make([]string, len(parts))
	for i, p := range parts {
		cols[i] = strings.TrimSpace(p)
	}
	return cols
}
