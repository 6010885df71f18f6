// Package config resolves the probe's settings from the command line, the
// environment, an optional YAML file and a pgpass file into one immutable
// Config value.
//
// Precedence, highest first: explicit flag, config file, pgpass first entry
// (connection fields only), environment, built-in default.
package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Options defines command line options.
type Options struct {
	Hostname    string  `short:"H" long:"hostname" env:"PGHOST" default:"localhost" description:"database host name or socket directory"`
	Port        int     `short:"P" long:"port" env:"PGPORT" default:"5432" description:"database port"`
	Database    string  `short:"d" long:"db" env:"PGDATABASE" default:"postgres" description:"database name"`
	User        string  `short:"u" long:"user" env:"PGUSER" description:"database user"`
	Password    string  `short:"p" long:"password" env:"PGPASSWORD" description:"database password"`
	PgPass      string  `short:"f" long:"pgpass" env:"PGPASSFILE" description:"pgpass file (default ~/.pgpass)"`
	Query       string  `short:"q" long:"query" description:"query to run instead of the bloat estimation preset"`
	Bloat       string  `short:"b" long:"bloat" choice:"table" choice:"index" default:"table" description:"bloat estimation preset used when no query is given"`
	Timeout     int     `short:"T" long:"timeout" default:"10" description:"connect and query timeout in seconds"`
	Scheme      string  `short:"s" long:"scheme" description:"metric naming scheme (default <hostname>.postgresql)"`
	Tuples      bool    `short:"t" long:"tuples" description:"emit the number of rows instead of field values"`
	Multirow    bool    `short:"m" long:"multirow" description:"emit every column of every row"`
	Columns     string  `short:"c" long:"columns" description:"comma separated metric suffixes for --multirow (default the preset's columns)"`
	SSLMode     string  `long:"sslmode" env:"PGSSLMODE" default:"prefer" choice:"disable" choice:"allow" choice:"prefer" choice:"require" choice:"verify-ca" choice:"verify-full" description:"TLS mode"`
	ConfigFile  string  `long:"config" description:"YAML config file"`
	DNSServer   string  `long:"dns-server" description:"resolve the database host through this DNS server (host[:port])"`
	Carbon      string  `long:"carbon" description:"also send metric lines to this Carbon relay (host:port)"`
	CarbonRate  float64 `long:"carbon-rate" default:"0" description:"Carbon lines per second, 0 for unlimited"`
	Textfile    string  `long:"textfile" description:"also write metrics to this Prometheus textfile"`
	ListPresets bool    `long:"list-presets" description:"list the built-in queries and their metrics and exit"`
	Debug       bool    `short:"D" long:"debug" description:"debug mode"`
	Version     bool    `short:"V" long:"version" description:"display the version and exit"`

	// explicit holds the long names of options given on the command line.
	explicit map[string]bool
	// fromFile holds the long names of options taken from the config file.
	fromFile    map[string]bool
	fileColumns []string
}

// Parse returns parsed command-line flags in Options struct.
// args must not include the program name. Nothing is printed: for --help
// the returned error carries the usage text, see IsHelp.
func Parse(name string, args []string) (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag)
	parser.Name = name

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", rest)
	}

	opts.explicit = make(map[string]bool)
	opts.fromFile = make(map[string]bool)
	for _, g := range parser.Groups() {
		for _, o := range g.Options() {
			// defaults and environment values mark the option as set from default
			if o.IsSet() && !o.IsSetDefault() {
				opts.explicit[o.LongName] = true
			}
		}
	}

	return opts, nil
}

// IsHelp reports whether err is the result of --help.
func IsHelp(err error) bool {
	return flags.WroteHelp(err)
}

// Explicit reports whether the option with the given long name was given on
// the command line.
func (o *Options) Explicit(long string) bool {
	return o.explicit[long]
}

// pinned reports whether the option was given on the command line or in the
// config file. Pinned connection fields are not filled from pgpass.
func (o *Options) pinned(long string) bool {
	return o.explicit[long] || o.fromFile[long]
}
