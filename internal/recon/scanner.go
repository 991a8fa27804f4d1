package recon

import (
	"context"
	"net"
	"time"

	"github.com/prowlsec/prowl/internal/engine"
	"github.com/prowlsec/prowl/pkg/ports"
)

// Fixed notes attached to terminal scan results.
const (
	noteUnresolved     = "Subdomain could not resolve, no analysis performed."
	noteNoOpenPorts    = "No open ports, skipping further analysis."
	noteAnalysisFailed = "Unable to perform advanced analysis due to API error."
	noteScanError      = "An error occurred during the scan."
)

const defaultDialTimeout = 1 * time.Second

// HostResolver resolves a host name to a single IP address.
type HostResolver func(ctx context.Context, host string) (string, error)

// ResolveHost is the default HostResolver, backed by the system resolver.
func ResolveHost(ctx context.Context, host string) (string, error) {
	ips, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	return ips[0], nil
}

// Scanner composes the port prober, banner reader, service classifier, web
// crawler, and the fingerprinting and analysis collaborators into the
// per-subdomain scan. It implements engine.SubdomainScanner.
type Scanner struct {
	Ports         []int
	DialTimeout   time.Duration
	Resolver      HostResolver
	Crawler       *Crawler
	Fingerprinter engine.Fingerprinter
	Analyzer      engine.Analyzer
}

// Scan runs the scan state machine for one host:
//
//	resolve -> unreachable
//	        -> probe -> no_open_ports
//	                 -> [crawl + fingerprint] -> analyze -> reachable
//
// It never propagates a failure to the caller: any panic deep in a stage or
// collaborator is converted into an error-terminal result.
func (s *Scanner) Scan(ctx context.Context, host string) (result engine.SubdomainResult) {
	defer func() {
		if r := recover(); r != nil {
			result = engine.SubdomainResult{
				Host:     host,
				Status:   engine.LivenessError,
				Analysis: noteScanError,
			}
		}
	}()
	return s.scan(ctx, host)
}

func (s *Scanner) scan(ctx context.Context, host string) engine.SubdomainResult {
	resolve := s.Resolver
	if resolve == nil {
		resolve = ResolveHost
	}

	ip, err := resolve(ctx, host)
	if err != nil {
		return engine.SubdomainResult{
			Host:     host,
			Status:   engine.LivenessUnreachable,
			Analysis: noteUnresolved,
		}
	}

	result := engine.SubdomainResult{Host: host, IP: ip}

	scanPorts := s.Ports
	if len(scanPorts) == 0 {
		scanPorts = ports.ScanSet
	}
	dialTimeout := s.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	for _, port := range scanPorts {
		select {
		case <-ctx.Done():
			// Budget exhausted: report what was gathered so far.
			return s.finish(ctx, result)
		default:
		}

		if !ProbePort(ctx, ip, port, dialTimeout) {
			continue
		}

		banner := ReadBanner(ctx, ip, port, dialTimeout)
		service, version := ClassifyService(port, banner)
		result.OpenPorts = append(result.OpenPorts, engine.OpenPort{
			Port:    port,
			State:   "open",
			Service: service,
			Version: version,
		})

		// An open canonical web port triggers a crawl and a fingerprint
		// pass; findings accumulate across however many are open.
		if ports.IsCrawlSeed(port) {
			seed := ports.SchemeFor(port) + "://" + host
			if s.Crawler != nil {
				result.Pages = append(result.Pages, s.Crawler.Crawl(ctx, seed)...)
			}
			if s.Fingerprinter != nil {
				result.Technologies = append(result.Technologies, s.Fingerprinter.Fingerprint(ctx, seed)...)
			}
		}
	}

	return s.finish(ctx, result)
}

// finish applies the terminal transition for a resolved host.
func (s *Scanner) finish(ctx context.Context, result engine.SubdomainResult) engine.SubdomainResult {
	if len(result.OpenPorts) == 0 {
		result.Status = engine.LivenessNoOpenPorts
		result.Pages = nil
		result.Technologies = nil
		result.Analysis = noteNoOpenPorts
		return result
	}

	result.Status = engine.LivenessReachable

	if s.Analyzer != nil {
		text, err := s.Analyzer.Analyze(ctx, engine.Findings{
			Host:         result.Host,
			OpenPorts:    result.OpenPorts,
			Technologies: result.Technologies,
		})
		if err != nil {
			result.Analysis = noteAnalysisFailed
		} else {
			result.Analysis = text
		}
	}

	return result
}
