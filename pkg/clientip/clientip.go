// Package clientip extracts the originating client IP from an HTTP request,
// looking through the proxy headers common in front of the service before
// falling back to the socket address.
package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// FromRequest returns the client IP for the request, or an empty string when
// nothing parseable is found. Header order: X-Forwarded-For (first valid
// entry), X-Real-IP, then RemoteAddr.
func FromRequest(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for _, entry := range strings.Split(forwarded, ",") {
			if ip := normalize(strings.TrimSpace(entry)); ip != "" {
				return ip
			}
		}
	}

	if ip := normalize(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests.
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

// normalize validates the input and returns its canonical form, stripping
// IPv6 brackets and zone identifiers.
func normalize(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSuffix(raw, "]"), "[")
	if i := strings.IndexByte(raw, '%'); i >= 0 {
		raw = raw[:i]
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return ""
	}
	return addr.String()
}
