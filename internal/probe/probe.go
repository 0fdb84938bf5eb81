// Package probe implements the connectivity probes behind a scan: ICMP
// echo for host liveness, TCP connect and UDP datagram probes for port
// state. Every probe is independent, bounded by a timeout, and never
// retried; a timeout expiry is a final verdict, not an error.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/probeworks/netsweep/internal/logging"
	"github.com/probeworks/netsweep/internal/metrics"
	"github.com/probeworks/netsweep/internal/target"
)

// Protocol selects the probe type for port scans.
type Protocol string

const (
	TCP  Protocol = "tcp"
	UDP  Protocol = "udp"
	ICMP Protocol = "icmp"
)

// Verdict is the classification outcome of a single probe.
type Verdict string

const (
	// Liveness verdicts. Host-down and ICMP-filtered both report Down.
	VerdictAlive Verdict = "alive"
	VerdictDown  Verdict = "down"

	// Port verdicts. UDP cannot distinguish closed from filtered on a
	// silent peer, so a timed-out UDP probe reports Unknown
	// ("open|filtered") rather than a false definitive state.
	VerdictOpen    Verdict = "open"
	VerdictClosed  Verdict = "closed"
	VerdictUnknown Verdict = "unknown"
)

// Result is the outcome of one probe. Port is zero for liveness probes.
type Result struct {
	Address  string
	Port     int
	Protocol Protocol
	Verdict  Verdict
	Duration time.Duration
}

// String renders the result in the "addr[:port]/proto verdict" form used
// by log lines.
func (r Result) String() string {
	if r.Port > 0 {
		return fmt.Sprintf("%s:%d/%s %s", r.Address, r.Port, r.Protocol, r.Verdict)
	}
	return fmt.Sprintf("%s/%s %s", r.Address, r.Protocol, r.Verdict)
}

const defaultTimeout = time.Second

// Prober executes probes with a fixed per-probe timeout. It carries no
// state between probes and is safe for concurrent use.
type Prober struct {
	timeout    time.Duration
	privileged bool
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the per-probe timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithPrivileged selects raw-socket ICMP for liveness probes. Without
// it the pinger uses unprivileged UDP datagrams, which requires the
// ping_group_range sysctl on Linux.
func WithPrivileged(privileged bool) Option {
	return func(p *Prober) {
		p.privileged = privileged
	}
}

// New creates a Prober with the given options.
func New(opts ...Option) *Prober {
	p := &Prober{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout returns the per-probe timeout.
func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Liveness sends a single ICMP echo request to the address and
// classifies it Alive if a reply arrives before the timeout, Down
// otherwise. Hostnames are resolved to IPv4 first; a host that cannot
// be resolved is Down.
func (p *Prober) Liveness(ctx context.Context, address string) Result {
	start := time.Now()
	result := Result{Address: address, Protocol: ICMP, Verdict: VerdictDown}

	addr, err := target.ResolveIPv4(address)
	if err != nil {
		logging.DebugProbe("liveness resolve failed", address, "error", err)
		result.Duration = time.Since(start)
		return p.record(result)
	}

	pinger, err := probing.NewPinger(addr)
	if err != nil {
		logging.DebugProbe("pinger setup failed", address, "error", err)
		result.Duration = time.Since(start)
		return p.record(result)
	}
	pinger.Count = 1
	pinger.Timeout = p.timeout
	pinger.SetNetwork("ip4")
	pinger.SetPrivileged(p.privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		logging.DebugProbe("liveness probe failed", address, "error", err)
		result.Duration = time.Since(start)
		return p.record(result)
	}

	if pinger.Statistics().PacketsRecv > 0 {
		result.Verdict = VerdictAlive
	}
	result.Duration = time.Since(start)
	return p.record(result)
}

// Port probes (address, port) with the selected protocol.
func (p *Prober) Port(ctx context.Context, address string, port int, proto Protocol) Result {
	switch proto {
	case UDP:
		return p.udp(ctx, address, port)
	default:
		return p.tcp(ctx, address, port)
	}
}

// tcp attempts a connect handshake. Success within the timeout is Open;
// any failure (refused, timeout, unreachable) is Closed. No payload is
// sent or read.
func (p *Prober) tcp(ctx context.Context, address string, port int) Result {
	start := time.Now()
	result := Result{Address: address, Port: port, Protocol: TCP, Verdict: VerdictClosed}

	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp4", net.JoinHostPort(address, fmt.Sprintf("%d", port)))
	result.Duration = time.Since(start)
	if err != nil {
		logging.DebugProbe("tcp probe", address, "port", port, "error", err)
		return p.record(result)
	}
	_ = conn.Close()

	result.Verdict = VerdictOpen
	return p.record(result)
}

// udp sends a minimal datagram and waits for any response. An
// application reply is Open; an ICMP port-unreachable surfaced on the
// connected socket is Closed; silence until the timeout is Unknown.
func (p *Prober) udp(ctx context.Context, address string, port int) Result {
	start := time.Now()
	result := Result{Address: address, Port: port, Protocol: UDP, Verdict: VerdictUnknown}

	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "udp4", net.JoinHostPort(address, fmt.Sprintf("%d", port)))
	if err != nil {
		logging.DebugProbe("udp dial", address, "port", port, "error", err)
		result.Verdict = classifyUDPError(err)
		result.Duration = time.Since(start)
		return p.record(result)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(p.timeout)); err != nil {
		result.Duration = time.Since(start)
		return p.record(result)
	}

	if _, err := conn.Write([]byte{0x00}); err != nil {
		result.Verdict = classifyUDPError(err)
		result.Duration = time.Since(start)
		return p.record(result)
	}

	// Any datagram back, zero-length included, is an application
	// response.
	buf := make([]byte, 1500)
	_, err = conn.Read(buf)
	result.Duration = time.Since(start)

	if err != nil {
		result.Verdict = classifyUDPError(err)
	} else {
		result.Verdict = VerdictOpen
	}
	return p.record(result)
}

// classifyUDPError maps a socket error from a UDP probe to a verdict.
// A connected UDP socket surfaces ICMP port-unreachable as ECONNREFUSED
// on the next read or write; that is the only error that proves the
// port is closed. Everything else, timeouts included, stays Unknown.
func classifyUDPError(err error) Verdict {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return VerdictClosed
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return VerdictUnknown
	}
	return VerdictUnknown
}

// record updates probe metrics and returns the result unchanged.
func (p *Prober) record(r Result) Result {
	metrics.RecordProbe(string(r.Protocol), string(r.Verdict), r.Duration)
	return r
}
