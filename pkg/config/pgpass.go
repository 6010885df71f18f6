package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jackc/pgpassfile"
)

// pgpassWildcard matches any value in a pgpass field.
const pgpassWildcard = "*"

// pgpassPath returns the pgpass file to read and whether it has to exist.
// An explicitly named file must exist; ~/.pgpass is optional.
func pgpassPath(opts *Options) (string, bool) {
	if opts.PgPass != "" {
		return opts.PgPass, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".pgpass"), false
}

// applyPgpass fills the connection fields that were neither given on the
// command line nor in the config file from the first pgpass entry, then
// looks up the password when none is set.
func applyPgpass(opts *Options) error {
	path, required := pgpassPath(opts)
	if path == "" {
		return nil
	}

	pf, err := pgpassfile.ReadPassfile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("pgpass %s: %w", path, err)
	}

	if len(pf.Entries) > 0 {
		e := pf.Entries[0]
		fillFromPgpass(opts, "hostname", &opts.Hostname, e.Hostname)
		fillFromPgpass(opts, "db", &opts.Database, e.Database)
		fillFromPgpass(opts, "user", &opts.User, e.Username)
		if e.Port != pgpassWildcard && e.Port != "" && !opts.pinned("port") {
			port, err := strconv.Atoi(e.Port)
			if err != nil {
				return fmt.Errorf("pgpass %s: invalid port %q", path, e.Port)
			}
			opts.Port = port
		}
	}

	if opts.Password == "" {
		opts.Password = pf.FindPassword(opts.Hostname, strconv.Itoa(opts.Port), opts.Database, opts.User)
	}
	return nil
}

func fillFromPgpass(opts *Options, long string, dst *string, v string) {
	if v == "" || v == pgpassWildcard || opts.pinned(long) {
		return
	}
	*dst = v
}
