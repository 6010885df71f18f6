package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kylerisse/pgmetric/pkg/projection"
)

// DefaultCarbonTimeout bounds dialing the relay and writing all lines.
const DefaultCarbonTimeout = 5 * time.Second

// Carbon sends metric lines to a Carbon relay over TCP using the Graphite
// plaintext protocol.
type Carbon struct {
	addr    string
	timeout time.Duration
	limiter *rate.Limiter // nil means unlimited
	dialer  *net.Dialer
	conn    net.Conn
	logger  *logrus.Logger
}

// CarbonOption is a functional option for configuring a Carbon emitter.
type CarbonOption func(*Carbon) error

// WithRate limits the relay to perSecond lines per second. Zero disables
// the limit.
func WithRate(perSecond float64) CarbonOption {
	return func(c *Carbon) error {
		if perSecond < 0 || math.IsNaN(perSecond) {
			return fmt.Errorf("rate must not be negative, got %v", perSecond)
		}
		if perSecond == 0 {
			c.limiter = nil
			return nil
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithCarbonTimeout sets the dial and write timeout.
func WithCarbonTimeout(d time.Duration) CarbonOption {
	return func(c *Carbon) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		c.timeout = d
		return nil
	}
}

// WithCarbonLogger sets the logger.
func WithCarbonLogger(l *logrus.Logger) CarbonOption {
	return func(c *Carbon) error {
		if l == nil {
			return fmt.Errorf("logger must not be nil")
		}
		c.logger = l
		return nil
	}
}

// NewCarbon creates a Carbon emitter for addr (host:port). No connection is
// made until the first Emit.
func NewCarbon(addr string, opts ...CarbonOption) (*Carbon, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("carbon: invalid address %q: %w", addr, err)
	}
	c := &Carbon{
		addr:    addr,
		timeout: DefaultCarbonTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("carbon: %w", err)
		}
	}
	c.dialer = &net.Dialer{Timeout: c.timeout}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetOutput(io.Discard)
	}
	return c, nil
}

// Name returns the relay address.
func (c *Carbon) Name() string {
	return "carbon " + c.addr
}

// Emit writes one line per emission to the relay, waiting on the rate
// limiter between lines.
func (c *Carbon) Emit(ctx context.Context, ts time.Time, emissions []projection.Emission) error {
	if len(emissions) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.conn == nil {
		conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
		if err != nil {
			return fmt.Errorf("carbon: dial %s: %w", c.addr, err)
		}
		c.conn = conn
		c.logger.Debugf("connected to carbon relay %s", c.addr)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("carbon: %w", err)
		}
	}

	w := bufio.NewWriter(c.conn)
	for _, e := range emissions {
		if c.limiter != nil {
			// flush what is queued before blocking on the limiter
			if err := w.Flush(); err != nil {
				return fmt.Errorf("carbon: write %s: %w", c.addr, err)
			}
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("carbon: %w", err)
			}
		}
		if err := WriteLine(w, e, ts); err != nil {
			return fmt.Errorf("carbon: write %s: %w", c.addr, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("carbon: write %s: %w", c.addr, err)
	}
	return nil
}

// Close closes the relay connection if one was opened.
func (c *Carbon) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
