package output

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kylerisse/pgmetric/pkg/projection"
)

// startRelay accepts one connection and sends everything it reads on the
// returned channel once the client closes.
func startRelay(t *testing.T) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			got <- ""
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		got <- string(data)
	}()

	return ln.Addr().String(), got
}

func sample() []projection.Emission {
	return []projection.Emission{
		{Name: "db.postgresql.total_MB", Value: projection.Numeric("1024.00")},
		{Name: "db.postgresql.wasted_MB", Value: projection.Numeric("12.50")},
	}
}

func TestCarbon_Emit(t *testing.T) {
	addr, got := startRelay(t)

	c, err := NewCarbon(addr)
	require.NoError(t, err)
	assert.Equal(t, "carbon "+addr, c.Name())

	require.NoError(t, c.Emit(context.Background(), ts, sample()))
	require.NoError(t, c.Close())

	select {
	case data := <-got:
		assert.Equal(t,
			"db.postgresql.total_MB 1024.00 1700000000\n"+
				"db.postgresql.wasted_MB 12.50 1700000000\n",
			data)
	case <-time.After(5 * time.Second):
		t.Fatal("relay received nothing")
	}
}

func TestCarbon_EmitRateLimited(t *testing.T) {
	addr, got := startRelay(t)

	c, err := NewCarbon(addr, WithRate(1000))
	require.NoError(t, err)

	require.NoError(t, c.Emit(context.Background(), ts, sample()))
	require.NoError(t, c.Close())

	select {
	case data := <-got:
		assert.Contains(t, data, "db.postgresql.wasted_MB 12.50 1700000000\n")
	case <-time.After(5 * time.Second):
		t.Fatal("relay received nothing")
	}
}

func TestCarbon_NothingToEmit(t *testing.T) {
	c, err := NewCarbon("127.0.0.1:1")
	require.NoError(t, err)

	assert.NoError(t, c.Emit(context.Background(), ts, nil))
	assert.NoError(t, c.Close())
}

func TestCarbon_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c, err := NewCarbon(addr, WithCarbonTimeout(time.Second))
	require.NoError(t, err)

	err = c.Emit(context.Background(), ts, sample())
	assert.Error(t, err)
	assert.NoError(t, c.Close())
}

func TestNewCarbon_Validation(t *testing.T) {
	_, err := NewCarbon("no-port")
	assert.Error(t, err)
	_, err = NewCarbon("127.0.0.1:2003", WithRate(-1))
	assert.Error(t, err)
	_, err = NewCarbon("127.0.0.1:2003", WithCarbonTimeout(0))
	assert.Error(t, err)
	_, err = NewCarbon("127.0.0.1:2003", WithCarbonLogger(nil))
	assert.Error(t, err)
}
