package http

import (
	"net"
	"net/http"
	"strings"

	"catalog-analytics/internal/domain"
)

// clientAddressHeaders are consulted in order. The first non-empty one wins.
var clientAddressHeaders = []string{
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Client-IP",
}

// ResolveClientID returns a best-effort client identifier from proxy
// headers, or domain.UnknownClient. The value is only used as an opaque
// dedup key and is not validated as an address.
func ResolveClientID(r *http.Request) string {
	for _, header := range clientAddressHeaders {
		value := r.Header.Get(header)
		if header == "X-Forwarded-For" {
			// May list every hop; the first one is the original client.
			value, _, _ = strings.Cut(value, ",")
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return domain.UnknownClient
}

// rateLimitKey identifies the caller for rate limiting. Unlike dedup it
// falls back to the connection address so unresolved clients do not
// share one bucket.
func rateLimitKey(r *http.Request) string {
	if id := ResolveClientID(r); id != domain.UnknownClient {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
