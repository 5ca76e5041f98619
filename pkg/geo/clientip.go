package geo

import (
	"net"
	"net/http"
	"strings"
)

// ExtractClientIP returns the originating client address for a request.
// When an X-Forwarded-For header is present, the first comma-separated token
// is taken (the client as seen by the outermost proxy); otherwise the
// transport-level peer address is used.
func ExtractClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
