// Package target expands scan target expressions into concrete address
// sequences. An expression is a comma-joined list of segments, where each
// segment is a dash range ("10.0.0.1-10.0.0.50"), a CIDR block
// ("192.168.1.0/24"), or a literal host (IP or hostname, passed through
// unexpanded for probe-layer resolution). Only dotted-quad IPv4 is
// supported for range arithmetic.
package target

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/probeworks/netsweep/internal/errors"
)

const (
	addressBits = 32
	maxPrefix   = 32

	// A CIDR block needs more than two addresses before any usable
	// host exists between network and broadcast, so /31 and /32
	// expand to nothing.
	minUsableBlock = 2
)

// Expression is a parsed target expression. Its address sequence is
// produced incrementally and is restartable, so large ranges never need
// to be materialized unless the caller asks for it.
type Expression struct {
	raw      string
	segments []segment
}

// segment is one comma-separated part of a target expression.
type segment interface {
	// count returns the number of addresses the segment expands to.
	count() int
	// each yields addresses in order until fn returns false.
	// It reports whether iteration ran to completion.
	each(fn func(addr string) bool) bool
}

// Parse parses a target expression into its segments. Dash ranges and
// CIDR blocks must use well-formed dotted-quad IPv4 addresses; a segment
// containing a dash whose endpoints are not both IPv4 addresses is
// treated as a literal hostname (hostnames may legitimately contain
// hyphens).
func Parse(expr string) (*Expression, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, errors.ErrInvalidTarget(expr)
	}

	e := &Expression{raw: trimmed}
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		seg, err := parseSegment(part)
		if err != nil {
			return nil, err
		}
		e.segments = append(e.segments, seg)
	}

	if len(e.segments) == 0 {
		return nil, errors.ErrInvalidTarget(expr)
	}
	return e, nil
}

// String returns the original expression text.
func (e *Expression) String() string {
	return e.raw
}

// Count returns the total number of addresses the expression expands to
// without materializing them.
func (e *Expression) Count() int {
	total := 0
	for _, seg := range e.segments {
		total += seg.count()
	}
	return total
}

// Each yields every address in segment order until fn returns false.
// Iteration is restartable; calling Each again replays the sequence.
func (e *Expression) Each(fn func(addr string) bool) {
	for _, seg := range e.segments {
		if !seg.each(fn) {
			return
		}
	}
}

// Addresses materializes the full address sequence. Callers expanding
// very large ranges should prefer Each.
func (e *Expression) Addresses() []string {
	addrs := make([]string, 0, e.Count())
	e.Each(func(addr string) bool {
		addrs = append(addrs, addr)
		return true
	})
	return addrs
}

func parseSegment(part string) (segment, error) {
	if strings.Contains(part, "/") {
		return parseCIDR(part)
	}
	if strings.Contains(part, "-") {
		if seg, ok := parseDashRange(part); ok {
			return seg, nil
		}
	}
	return literal(part), nil
}

// literal is a hostname or bare IP emitted unchanged.
type literal string

func (l literal) count() int { return 1 }

func (l literal) each(fn func(string) bool) bool {
	return fn(string(l))
}

// dashRange is an inclusive range of IPv4 addresses ordered by their
// 32-bit integer value. A reversed range (start > end) is empty rather
// than an error.
type dashRange struct {
	start, end uint32
}

func parseDashRange(part string) (segment, bool) {
	bounds := strings.SplitN(part, "-", 2)
	start, err := AddrToInt(strings.TrimSpace(bounds[0]))
	if err != nil {
		return nil, false
	}
	end, err := AddrToInt(strings.TrimSpace(bounds[1]))
	if err != nil {
		return nil, false
	}
	return dashRange{start: start, end: end}, true
}

func (r dashRange) count() int {
	if r.start > r.end {
		return 0
	}
	return int(uint64(r.end)-uint64(r.start)) + 1
}

func (r dashRange) each(fn func(string) bool) bool {
	if r.start > r.end {
		return true
	}
	for u := r.start; ; u++ {
		if !fn(IntToAddr(u)) {
			return false
		}
		if u == r.end {
			return true
		}
	}
}

// cidrBlock expands to the usable host addresses of a network: every
// address strictly between network and broadcast. Blocks of /31 and /32
// therefore expand to nothing. The host count is held as uint64 so a /0
// block (2^32 addresses) stays representable.
type cidrBlock struct {
	network uint32
	hosts   uint64
}

func parseCIDR(part string) (segment, error) {
	fields := strings.SplitN(part, "/", 2)
	ipInt, err := AddrToInt(strings.TrimSpace(fields[0]))
	if err != nil {
		return nil, errors.WrapTargetError(part, err)
	}

	prefix, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || prefix < 0 || prefix > maxPrefix {
		return nil, errors.ErrInvalidTarget(part)
	}

	hosts := uint64(1) << (addressBits - prefix)

	// Mask the address down to its network base. The masked form is
	// required: octet multiplication without fixed-width unsigned
	// arithmetic corrupts large blocks.
	network := ipInt &^ uint32(hosts-1)

	return cidrBlock{network: network, hosts: hosts}, nil
}

func (c cidrBlock) broadcast() uint32 {
	return c.network + uint32(c.hosts-1)
}

func (c cidrBlock) count() int {
	if c.hosts <= minUsableBlock {
		return 0
	}
	return int(c.hosts - 2)
}

func (c cidrBlock) each(fn func(string) bool) bool {
	if c.hosts <= minUsableBlock {
		return true
	}
	last := c.broadcast() - 1
	for u := c.network + 1; ; u++ {
		if !fn(IntToAddr(u)) {
			return false
		}
		if u == last {
			return true
		}
	}
}

// AddrToInt converts a dotted-quad IPv4 address to its unsigned 32-bit
// integer form using (o1<<24)+(o2<<16)+(o3<<8)+o4.
func AddrToInt(addr string) (uint32, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return 0, fmt.Errorf("not an IP address: %q", addr)
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0, fmt.Errorf("not an IPv4 address: %q", addr)
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3]), nil
}

// IntToAddr converts an unsigned 32-bit integer back to dotted-quad form.
func IntToAddr(u uint32) string {
	return net.IPv4(byte(u>>24), byte(u>>16), byte(u>>8), byte(u)).String()
}
