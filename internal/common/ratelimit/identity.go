package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownClient pools every caller whose address could not be determined
const UnknownClient = "unknown"

// KeyFunc derives the throttling identifier from a request
type KeyFunc func(*http.Request) string

// ClientIP returns a best-effort caller address from proxy headers, checking
// X-Forwarded-For (first entry), X-Real-IP and CF-Connecting-IP in order.
// The value is not validated.
func ClientIP(h http.Header) string {
	if fwd := h.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(h.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(h.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	return UnknownClient
}

// IPKey extracts the caller IP for rate limiting
func IPKey(r *http.Request) string {
	return ClientIP(r.Header)
}

// UserKey keys by the X-User-ID header and falls back to the caller IP.
// The two namespaces are prefixed so a user id can never equal an address.
func UserKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return "user:" + id
	}
	return "ip:" + IPKey(r)
}
