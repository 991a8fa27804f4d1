// Package ports defines the fixed TCP port set prowl probes and helpers
// for classifying ports into protocol families.
package ports

// ScanSet is the fixed set of ports probed on every subdomain, covering
// HTTP(S), FTP, SSH, SMTP, MySQL, and alternate HTTP(S).
var ScanSet = []int{80, 443, 21, 22, 25, 3306, 8080, 8443}

// IsHTTPFamily reports whether a port speaks HTTP(S) and should receive a
// HEAD greeting during banner grabbing.
func IsHTTPFamily(port int) bool {
	switch port {
	case 80, 443, 8080, 8443:
		return true
	}
	return false
}

// IsCrawlSeed reports whether an open port triggers a web crawl of the host.
// Only the canonical web ports do; the alternates are recorded but not crawled.
func IsCrawlSeed(port int) bool {
	return port == 80 || port == 443
}

// SchemeFor returns the URL scheme to use when seeding a crawl from a port.
func SchemeFor(port int) string {
	if port == 443 || port == 8443 {
		return "https"
	}
	return "http"
}
