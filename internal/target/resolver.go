package target

import (
	"fmt"
	"net"
)

// ResolveIPv4 resolves a literal target (hostname or IP string) to its
// first IPv4 address. The tool is IPv4-only, so IPv6-only hosts are an
// error rather than a silent fallback.
func ResolveIPv4(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
		return "", fmt.Errorf("IPv6 address %q is not supported", host)
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", host, err)
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("host %q resolves only to IPv6 addresses", host)
}
