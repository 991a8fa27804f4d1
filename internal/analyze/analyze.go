// Package analyze implements the narrative-analysis collaborator: given
// structured scan findings it produces free-text security commentary.
package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/prowlsec/prowl/internal/engine"
)

// portRisks maps scan-set ports to the exposure note attached when the
// port is found open.
var portRisks = map[int]string{
	21:   "FTP transmits credentials in cleartext and is a common target for anonymous-login misconfigurations.",
	22:   "SSH exposure invites credential brute forcing; key-only auth and rate limiting are advisable.",
	25:   "An exposed SMTP service should be checked for open-relay configuration.",
	80:   "HTTP without TLS exposes session data in transit.",
	3306: "MySQL reachable from the internet is a high-value target and should be firewalled to trusted hosts.",
	8080: "Alternate HTTP ports often carry admin consoles or staging apps with weaker hardening.",
	8443: "Alternate HTTPS ports often carry admin consoles or staging apps with weaker hardening.",
}

// techRisks maps fingerprinted technology names to commentary.
var techRisks = map[string]string{
	"WordPress": "WordPress installations accumulate plugin vulnerabilities quickly; verify core and plugins are current.",
	"Drupal":    "Drupal has a history of critical remote-code-execution advisories; confirm the patch level.",
	"Joomla":    "Joomla extensions are a frequent injection vector; confirm the patch level.",
	"PHP":       "A disclosed PHP runtime invites version-targeted exploits; hide the X-Powered-By header.",
}

// Heuristic is a local, always-available Analyzer producing rule-based
// commentary from the findings. It backs prowl when no remote analysis
// endpoint is configured.
type Heuristic struct{}

// Healthy implements engine.Analyzer; the heuristic is always available.
func (Heuristic) Healthy(ctx context.Context) bool { return true }

// Analyze builds commentary from the open ports and technologies.
func (Heuristic) Analyze(ctx context.Context, f engine.Findings) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s exposes %d open port(s) out of the probed set.", f.Host, len(f.OpenPorts))

	for _, p := range f.OpenPorts {
		if note, ok := portRisks[p.Port]; ok {
			fmt.Fprintf(&b, " Port %d (%s): %s", p.Port, p.Service, note)
		}
		if p.Version != "unknown" && p.Version != "" {
			fmt.Fprintf(&b, " The %s service discloses its version (%s), easing targeted exploitation.", p.Service, p.Version)
		}
	}

	seen := make(map[string]bool)
	for _, tech := range f.Technologies {
		if seen[tech] {
			continue
		}
		seen[tech] = true
		if note, ok := techRisks[tech]; ok {
			b.WriteString(" ")
			b.WriteString(note)
		}
	}

	if len(f.Technologies) > 0 {
		fmt.Fprintf(&b, " Identified technologies: %s.", strings.Join(dedupe(f.Technologies), ", "))
	}

	return b.String(), nil
}

func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	var out []string
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
