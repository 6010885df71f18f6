// Package pgsql runs a single query against PostgreSQL and returns the rows
// as a projection.Result.
//
// It opens exactly one connection through the pgx database/sql driver,
// applies the configured timeout to both connecting and querying, and
// must be closed on every exit path.
package pgsql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// ConnParams holds everything needed to reach the database.
type ConnParams struct {
	Host           string
	Port           int
	Database       string
	User           string
	Password       string
	SSLMode        string
	ConnectTimeout time.Duration
}

// String renders the parameters for logs, without the password.
func (p ConnParams) String() string {
	return fmt.Sprintf("postgres://%s@%s:%d/%s", p.User, p.Host, p.Port, p.Database)
}

// keywordDSN renders p as a libpq keyword/value connection string.
func (p ConnParams) keywordDSN() string {
	var b strings.Builder
	add := func(key, value string) {
		if value == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(quoteDSNValue(value))
	}

	add("host", p.Host)
	if p.Port > 0 {
		add("port", strconv.Itoa(p.Port))
	}
	add("dbname", p.Database)
	add("user", p.User)
	add("password", p.Password)
	add("sslmode", p.SSLMode)
	if p.ConnectTimeout > 0 {
		secs := int(p.ConnectTimeout.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		add("connect_timeout", strconv.Itoa(secs))
	}
	return b.String()
}

var dsnValueReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteDSNValue(v string) string {
	return "'" + dsnValueReplacer.Replace(v) + "'"
}

// connConfig parses p into a pgx config.
func (p ConnParams) connConfig() (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(p.keywordDSN())
	if err != nil {
		return nil, fmt.Errorf("pgsql: parsing connection parameters for %s: %w", p, err)
	}
	return cfg, nil
}
