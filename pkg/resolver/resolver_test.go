package resolver

import (
	"context"
	"net"
	"sort"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startTestServer starts an in-process UDP DNS server on a random port.
// The provided handler is called for every incoming query. The server
// is shut down automatically when the test ends.
func startTestServer(t *testing.T, handler func(dns.ResponseWriter, *dns.Msg)) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	srv := &dns.Server{PacketConn: pc, Handler: dns.HandlerFunc(handler)}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

// zoneHandler answers A and AAAA queries from the given records and
// returns NXDOMAIN for names it does not know.
func zoneHandler(a, aaaa map[string]string) func(dns.ResponseWriter, *dns.Msg) {
	return func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		q := req.Question[0]

		_, knownA := a[q.Name]
		_, knownAAAA := aaaa[q.Name]
		if !knownA && !knownAAAA {
			m.Rcode = dns.RcodeNameError
			_ = w.WriteMsg(m)
			return
		}

		switch q.Qtype {
		case dns.TypeA:
			if ip, ok := a[q.Name]; ok {
				m.Answer = append(m.Answer, &dns.A{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
					A:   net.ParseIP(ip),
				})
			}
		case dns.TypeAAAA:
			if ip, ok := aaaa[q.Name]; ok {
				m.Answer = append(m.Answer, &dns.AAAA{
					Hdr:  dns.RR_Header{Name: q.Name, Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 60},
					AAAA: net.ParseIP(ip),
				})
			}
		}
		_ = w.WriteMsg(m)
	}
}

func TestNew_EmptyServer(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty server")
	}
}

func TestNew_DefaultPort(t *testing.T) {
	r, err := New("10.0.0.53")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Server() != "10.0.0.53:53" {
		t.Errorf("expected default port 53, got %q", r.Server())
	}
}

func TestNew_WithTimeout(t *testing.T) {
	r, err := New("127.0.0.1:53", WithTimeout(7*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.timeout != 7*time.Second {
		t.Errorf("expected timeout 7s, got %v", r.timeout)
	}
	if _, err := New("127.0.0.1:53", WithTimeout(0)); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestLookupHost_ALookup(t *testing.T) {
	addr := startTestServer(t, zoneHandler(
		map[string]string{"db.internal.": "10.1.2.3"},
		nil,
	))
	r, err := New(addr, WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := r.LookupHost(context.Background(), "db.internal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "10.1.2.3" {
		t.Errorf("expected [10.1.2.3], got %v", got)
	}
}

func TestLookupHost_DualStack(t *testing.T) {
	addr := startTestServer(t, zoneHandler(
		map[string]string{"db.internal.": "10.1.2.3"},
		map[string]string{"db.internal.": "fd00::3"},
	))
	r, _ := New(addr, WithTimeout(time.Second))

	got, err := r.LookupHost(context.Background(), "db.internal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "10.1.2.3" || got[1] != "fd00::3" {
		t.Errorf("expected both addresses, got %v", got)
	}
}

func TestLookupHost_NXDomain(t *testing.T) {
	addr := startTestServer(t, zoneHandler(nil, nil))
	r, _ := New(addr, WithTimeout(time.Second))

	if _, err := r.LookupHost(context.Background(), "missing.internal"); err == nil {
		t.Error("expected error for NXDOMAIN")
	}
}

func TestLookupHost_IPLiteral(t *testing.T) {
	r, _ := New("127.0.0.1:1")

	got, err := r.LookupHost(context.Background(), "192.168.0.10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "192.168.0.10" {
		t.Errorf("expected literal passthrough, got %v", got)
	}
}

func TestLookupHost_SocketDir(t *testing.T) {
	r, _ := New("127.0.0.1:1")

	got, err := r.LookupHost(context.Background(), "/var/run/postgresql")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "/var/run/postgresql" {
		t.Errorf("expected socket dir passthrough, got %v", got)
	}
}

func TestExtractAddrs_SkipsOtherRecords(t *testing.T) {
	rrs := []dns.RR{
		&dns.CNAME{Hdr: dns.RR_Header{Name: "db.", Rrtype: dns.TypeCNAME}, Target: "real.db."},
		&dns.A{Hdr: dns.RR_Header{Name: "real.db.", Rrtype: dns.TypeA}, A: net.ParseIP("10.0.0.1")},
	}
	got := extractAddrs(rrs)
	if len(got) != 1 || got[0] != "10.0.0.1" {
		t.Errorf("expected [10.0.0.1], got %v", got)
	}
}
