// Package resolver looks up the database host against one specific DNS
// server instead of the system resolver. It is plugged into pgx as the
// connection LookupFunc when --dns-server is set.
//
// Both A and AAAA records are queried; the lookup succeeds when at least
// one of them answers with an address.
package resolver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the default per-query DNS timeout.
const DefaultTimeout = 3 * time.Second

// Resolver resolves host names through a single DNS server.
type Resolver struct {
	server  string // host:port of the DNS server
	timeout time.Duration
	client  *dns.Client
	logger  *logrus.Logger
}

// Option is a functional option for configuring a Resolver.
type Option func(*Resolver) error

// WithTimeout sets the DNS query timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		r.timeout = d
		return nil
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *logrus.Logger) Option {
	return func(r *Resolver) error {
		r.logger = l
		return nil
	}
}

// New creates a Resolver for the given server. A server without a port
// gets the standard port 53.
func New(server string, opts ...Option) (*Resolver, error) {
	if server == "" {
		return nil, fmt.Errorf("resolver: server must not be empty")
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	r := &Resolver{
		server:  server,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("resolver: %w", err)
		}
	}

	r.client = &dns.Client{
		Timeout: r.timeout,
	}

	return r, nil
}

// Server returns the host:port of the DNS server in use.
func (r *Resolver) Server() string {
	return r.server
}

// LookupHost returns the addresses of host. IP literals are returned as is.
// The signature matches pgconn.LookupFunc.
func (r *Resolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{ip.String()}, nil
	}
	// unix socket directories are not names
	if strings.HasPrefix(host, "/") {
		return []string{host}, nil
	}

	var addrs []string
	var lastErr error

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		found, err := r.query(ctx, host, qtype)
		if err != nil {
			lastErr = err
			continue
		}
		addrs = append(addrs, found...)
	}

	if len(addrs) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no A or AAAA records")
		}
		return nil, fmt.Errorf("resolver: lookup %s via %s: %w", host, r.server, lastErr)
	}

	if r.logger != nil {
		r.logger.Debugf("resolved %s via %s to %v", host, r.server, addrs)
	}
	return addrs, nil
}

func (r *Resolver) query(ctx context.Context, host string, qtype uint16) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)
	msg.RecursionDesired = true

	resp, _, err := r.client.ExchangeContext(ctx, msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", qtypeName(qtype), host, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s %s: rcode %s", qtypeName(qtype), host, dns.RcodeToString[resp.Rcode])
	}
	return extractAddrs(resp.Answer), nil
}

// extractAddrs collects the addresses of A and AAAA records, skipping CNAMEs
// and anything else in the answer section.
func extractAddrs(rrs []dns.RR) []string {
	var addrs []string
	for _, rr := range rrs {
		switch v := rr.(type) {
		case *dns.A:
			addrs = append(addrs, v.A.String())
		case *dns.AAAA:
			addrs = append(addrs, v.AAAA.String())
		}
	}
	return addrs
}

// qtypeName returns a human-readable record type name for error messages.
func qtypeName(qtype uint16) string {
	switch qtype {
	case dns.TypeA:
		return "A"
	case dns.TypeAAAA:
		return "AAAA"
	default:
		return fmt.Sprintf("TYPE%d", qtype)
	}
}
