package pkg

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// isLocalAddr reports loopback addresses and docker bridge gateways (172.x.0.1),
// which is where requests come from in local development.
func isLocalAddr(addr netip.Addr) bool {
	if addr.IsLoopback() {
		return true
	}
	if !addr.Is4() && !addr.Is4In6() {
		return false
	}
	octets := addr.Unmap().As4()
	return octets[0] == 172 && octets[2] == 0 && octets[3] == 1
}

func parseClientAddr(raw string) (netip.Addr, error) {
	raw = strings.TrimSpace(raw)
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("ip addr %q is invalid", raw)
	}
	return addr, nil
}

// ReadUserIP returns the client address of the request, honoring proxy headers.
// Local and docker bridge addresses are reported as "localhost".
func ReadUserIP(r *http.Request) (string, error) {
	raw := r.Header.Get("X-Real-Ip")
	if raw == "" {
		// first hop is the client
		raw, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	}
	if strings.TrimSpace(raw) == "" {
		raw = r.RemoteAddr
	}

	addr, err := parseClientAddr(raw)
	if err != nil {
		return "", err
	}
	if isLocalAddr(addr) {
		return "localhost", nil
	}

	return addr.Unmap().String(), nil
}
