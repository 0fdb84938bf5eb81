package probe

import (
	"context"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPOpenPort(t *testing.T) {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	prober := New(WithTimeout(time.Second))

	result := prober.Port(context.Background(), "127.0.0.1", port, TCP)

	assert.Equal(t, VerdictOpen, result.Verdict)
	assert.Equal(t, "127.0.0.1", result.Address)
	assert.Equal(t, port, result.Port)
	assert.Equal(t, TCP, result.Protocol)
}

func TestTCPClosedPort(t *testing.T) {
	// Grab a port that nothing is listening on.
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	timeout := time.Second
	prober := New(WithTimeout(timeout))

	start := time.Now()
	result := prober.Port(context.Background(), "127.0.0.1", port, TCP)
	elapsed := time.Since(start)

	assert.Equal(t, VerdictClosed, result.Verdict)
	assert.Less(t, elapsed, timeout+500*time.Millisecond)
}

func TestUDPOpenPort(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	// Echo server: any datagram gets a reply.
	go func() {
		buf := make([]byte, 64)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			_, _ = conn.WriteTo(buf[:n], addr)
		}
	}()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	prober := New(WithTimeout(time.Second))

	result := prober.Port(context.Background(), "127.0.0.1", port, UDP)

	assert.Equal(t, VerdictOpen, result.Verdict)
	assert.Equal(t, UDP, result.Protocol)
}

func TestUDPZeroLengthReplyIsOpen(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	// Reply with an empty datagram; receiving anything at all proves
	// an application is answering.
	go func() {
		buf := make([]byte, 64)
		for {
			_, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			_, _ = conn.WriteTo(nil, addr)
		}
	}()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	prober := New(WithTimeout(time.Second))

	result := prober.Port(context.Background(), "127.0.0.1", port, UDP)

	assert.Equal(t, VerdictOpen, result.Verdict)
}

func TestUDPClosedPort(t *testing.T) {
	// On loopback a datagram to a closed port reliably produces an
	// ICMP port-unreachable, surfaced as ECONNREFUSED.
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())

	prober := New(WithTimeout(time.Second))
	result := prober.Port(context.Background(), "127.0.0.1", port, UDP)

	assert.Equal(t, VerdictClosed, result.Verdict)
}

func TestLivenessUnresolvableHostIsDown(t *testing.T) {
	prober := New(WithTimeout(500 * time.Millisecond))

	result := prober.Liveness(context.Background(), "host.invalid")

	assert.Equal(t, VerdictDown, result.Verdict)
	assert.Equal(t, ICMP, result.Protocol)
	assert.Zero(t, result.Port)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyUDPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Verdict
	}{
		{
			name: "port unreachable is closed",
			err:  &net.OpError{Op: "read", Err: syscall.ECONNREFUSED},
			want: VerdictClosed,
		},
		{
			name: "timeout stays unknown",
			err:  timeoutErr{},
			want: VerdictUnknown,
		},
		{
			name: "anything else stays unknown",
			err:  assert.AnError,
			want: VerdictUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyUDPError(tt.err))
		})
	}
}

func TestResultString(t *testing.T) {
	portResult := Result{Address: "10.0.0.1", Port: 80, Protocol: TCP, Verdict: VerdictOpen}
	assert.Equal(t, "10.0.0.1:80/tcp open", portResult.String())

	hostResult := Result{Address: "10.0.0.1", Protocol: ICMP, Verdict: VerdictAlive}
	assert.Equal(t, "10.0.0.1/icmp alive", hostResult.String())
}
