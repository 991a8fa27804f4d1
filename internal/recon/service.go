package recon

import (
	"strings"

	"github.com/prowlsec/prowl/pkg/ports"
)

// ClassifyService maps a (port, banner) pair to a (service, version) pair.
// Pure function, no I/O. Rules are evaluated in order and the first match
// wins; an absent banner always classifies as unknown/unknown.
func ClassifyService(port int, banner string) (service, version string) {
	if banner == "" {
		return "unknown", "unknown"
	}

	if ports.IsHTTPFamily(port) {
		if idx := strings.Index(banner, "Server:"); idx >= 0 {
			v := banner[idx+len("Server:"):]
			if nl := strings.IndexAny(v, "\r\n"); nl >= 0 {
				v = v[:nl]
			}
			return "HTTP", strings.TrimSpace(v)
		}
		return "HTTP", "unknown"
	}

	first := firstToken(banner)

	switch {
	case port == 22 && strings.Contains(banner, "SSH"):
		return "SSH", first
	case port == 21 && strings.Contains(banner, "FTP"):
		return "FTP", first
	case port == 25 && strings.Contains(banner, "SMTP"):
		return "SMTP", first
	case port == 3306 && strings.Contains(strings.ToLower(banner), "mysql"):
		return "MySQL", first
	}

	if first == "" {
		first = "unknown"
	}
	return "unknown", first
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
