// Package output turns a check result into what the scheduler sees: metric
// lines on stdout, a status message and the process exit code. Successful
// results can also be published to extra emitters.
package output

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kylerisse/pgmetric/pkg/projection"
)

// An Emitter receives the metric emissions of a successful run and
// publishes them somewhere other than stdout.
type Emitter interface {
	// Emit publishes emissions stamped with ts. Null values never reach it.
	Emit(ctx context.Context, ts time.Time, emissions []projection.Emission) error

	// Name identifies the destination, such as a relay address or a path.
	Name() string

	Close() error
}

// WriteLine writes one metric line, "<name> <value> <unix_timestamp>".
func WriteLine(w io.Writer, e projection.Emission, ts time.Time) error {
	_, err := fmt.Fprintf(w, "%s %s %d\n", e.Name, e.Value.String(), ts.Unix())
	return err
}
