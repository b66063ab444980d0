package shield

import (
	"net"
	"net/http"
	"strings"
)

// userAgentPrefixLen caps how much of the User-Agent participates in the
// identity key. Enough to split NATed anonymous clients apart, short enough
// to keep keys cheap.
const userAgentPrefixLen = 32

// ResolveIdentity derives the composite key used to bucket all per-client
// state: best-effort client address, the authenticated user id when known,
// and a bounded User-Agent prefix. Deterministic and allocation-light; the
// key is recomputed on every request rather than cached.
func ResolveIdentity(r *http.Request, userID string) string {
	addr := clientAddress(r)

	ua := r.UserAgent()
	if len(ua) > userAgentPrefixLen {
		ua = ua[:userAgentPrefixLen]
	}

	if userID != "" {
		return addr + "|" + userID + "|" + ua
	}
	return addr + "|" + ua
}

// clientAddress prefers forwarding headers over the transport address, the
// same precedence gin's ClientIP applies behind a trusted proxy.
func clientAddress(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop in the chain is the originating client.
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// isLoopback reports whether the resolved client address is a trusted local
// address, which bypasses the rate and speed limiters.
func isLoopback(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}
