package output

import (
	"fmt"
	"io"

	"github.com/prowlsec/prowl/internal/engine"
)

// Version is set via ldflags at build time.
var Version = "dev"

// WriteHeader prints the prowl banner.
func WriteHeader(w io.Writer, noColor bool) {
	if noColor {
		fmt.Fprintf(w, "prowl %s\n\n", Version)
	} else {
		fmt.Fprintf(w, "\033[1mprowl %s\033[0m\n\n", Version)
	}
}

// WriteSummary prints the post-scan aggregate counts.
func WriteSummary(w io.Writer, scan *engine.DomainScan, noColor bool) {
	s := scan.Summary

	fmt.Fprintln(w)
	if noColor {
		fmt.Fprintf(w, "Target: %s (%s)\n", scan.Domain, scan.Status)
		fmt.Fprintf(w, "Subdomains: %d scanned, %d reachable, %d unreachable\n", s.Candidates, s.Reachable, s.Unreachable)
		fmt.Fprintf(w, "Open ports: %d\n", s.OpenPortCount)
	} else {
		fmt.Fprintf(w, "\033[1mTarget:\033[0m %s (%s)\n", scan.Domain, scan.Status)
		fmt.Fprintf(w, "\033[1mSubdomains:\033[0m %d scanned, %d reachable, %d unreachable\n", s.Candidates, s.Reachable, s.Unreachable)
		fmt.Fprintf(w, "\033[1mOpen ports:\033[0m %d\n", s.OpenPortCount)
	}

	if s.PageCount > 0 || s.TechCount > 0 {
		fmt.Fprintf(w, "Web: %d pages crawled, %d technology instances\n", s.PageCount, s.TechCount)
	}
	if s.Errors > 0 {
		if noColor {
			fmt.Fprintf(w, "! %d subdomain scans ended in error\n", s.Errors)
		} else {
			fmt.Fprintf(w, "\033[33m!\033[0m %d subdomain scans ended in error\n", s.Errors)
		}
	}

	for _, warning := range scan.Warnings {
		fmt.Fprintf(w, "  %s\n", warning)
	}
}
