package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// FileConfig is the content of the optional YAML config file. Absent keys
// stay nil and leave the command line value in place.
type FileConfig struct {
	Hostname   *string  `mapstructure:"hostname"`
	Port       *int     `mapstructure:"port"`
	Database   *string  `mapstructure:"db"`
	User       *string  `mapstructure:"user"`
	Password   *string  `mapstructure:"password"`
	PgPass     *string  `mapstructure:"pgpass"`
	SSLMode    *string  `mapstructure:"sslmode"`
	Query      *string  `mapstructure:"query"`
	Bloat      *string  `mapstructure:"bloat"`
	Timeout    *int     `mapstructure:"timeout"`
	Scheme     *string  `mapstructure:"scheme"`
	Tuples     *bool    `mapstructure:"tuples"`
	Multirow   *bool    `mapstructure:"multirow"`
	Columns    []string `mapstructure:"columns"`
	DNSServer  *string  `mapstructure:"dns_server"`
	Carbon     *string  `mapstructure:"carbon"`
	CarbonRate *float64 `mapstructure:"carbon_rate"`
	Textfile   *string  `mapstructure:"textfile"`
	Debug      *bool    `mapstructure:"debug"`
}

// ReadFile loads a YAML config file.
func ReadFile(path string) (*FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &fc, nil
}

// apply copies every value present in fc onto opts, except for options
// given explicitly on the command line.
func (fc *FileConfig) apply(opts *Options) {
	setFrom(opts, "hostname", &opts.Hostname, fc.Hostname)
	setFrom(opts, "port", &opts.Port, fc.Port)
	setFrom(opts, "db", &opts.Database, fc.Database)
	setFrom(opts, "user", &opts.User, fc.User)
	setFrom(opts, "password", &opts.Password, fc.Password)
	setFrom(opts, "pgpass", &opts.PgPass, fc.PgPass)
	setFrom(opts, "sslmode", &opts.SSLMode, fc.SSLMode)
	setFrom(opts, "query", &opts.Query, fc.Query)
	setFrom(opts, "bloat", &opts.Bloat, fc.Bloat)
	setFrom(opts, "timeout", &opts.Timeout, fc.Timeout)
	setFrom(opts, "scheme", &opts.Scheme, fc.Scheme)
	setFrom(opts, "tuples", &opts.Tuples, fc.Tuples)
	setFrom(opts, "multirow", &opts.Multirow, fc.Multirow)
	setFrom(opts, "dns-server", &opts.DNSServer, fc.DNSServer)
	setFrom(opts, "carbon", &opts.Carbon, fc.Carbon)
	setFrom(opts, "carbon-rate", &opts.CarbonRate, fc.CarbonRate)
	setFrom(opts, "textfile", &opts.Textfile, fc.Textfile)
	setFrom(opts, "debug", &opts.Debug, fc.Debug)

	if fc.Columns != nil && !opts.Explicit("columns") {
		opts.fileColumns = append([]string(nil), fc.Columns...)
		opts.fromFile["columns"] = true
	}
}

func setFrom[T any](opts *Options, long string, dst *T, v *T) {
	if v == nil || opts.Explicit(long) {
		return
	}
	*dst = *v
	opts.fromFile[long] = true
}
