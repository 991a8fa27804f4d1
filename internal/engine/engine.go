package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds the runtime configuration for a prowl run.
type Config struct {
	Target      string
	Workers     int           // worker pool width for the subdomain fan-out
	ScanTimeout time.Duration // per-subdomain scan budget
}

// Stages holds the injectable collaborator implementations.
type Stages struct {
	Enumerator Enumerator
	Scanner    SubdomainScanner
	Analyzer   Analyzer // optional; probed for health only
	Store      Store
}

const (
	totalStages = 4

	defaultWorkers     = 10
	defaultScanTimeout = 2 * time.Minute
)

// Run executes a full reconnaissance run for cfg.Target: it replaces any
// prior scan record for the domain, scans the root itself, fans the
// subdomain scanner out over every enumerated candidate under a bounded
// worker pool, and persists the aggregate. The returned scan is never left
// in a running state: any orchestration failure marks it failed before the
// error is returned.
func Run(ctx context.Context, cfg Config, stages Stages, progress ProgressReporter) (*DomainScan, error) {
	target := strings.ToLower(strings.TrimSpace(cfg.Target))

	scan := &DomainScan{
		ID:        uuid.NewString(),
		Domain:    target,
		Status:    StatusRunning,
		CreatedAt: time.Now(),
	}

	// Replace-then-create: the new run supersedes any stored result.
	if err := stages.Store.Save(ctx, scan); err != nil {
		return nil, fmt.Errorf("create scan record for %s: %w", target, err)
	}

	if err := run(ctx, cfg, stages, progress, scan); err != nil {
		scan.Status = StatusFailed
		scan.CompletedAt = time.Now()
		scan.DurationSecs = scan.CompletedAt.Sub(scan.CreatedAt).Seconds()
		if saveErr := stages.Store.Save(ctx, scan); saveErr != nil {
			progress.Warn(fmt.Sprintf("failed to persist failed scan: %s", saveErr))
		}
		return scan, err
	}

	scan.Status = StatusComplete
	scan.CompletedAt = time.Now()
	scan.DurationSecs = scan.CompletedAt.Sub(scan.CreatedAt).Seconds()
	scan.Summary = buildSummary(scan)

	if err := stages.Store.Save(ctx, scan); err != nil {
		scan.Status = StatusFailed
		// Best effort: never leave the stored record running.
		_ = stages.Store.Save(ctx, scan)
		return scan, fmt.Errorf("persist scan result for %s: %w", target, err)
	}

	return scan, nil
}

func run(ctx context.Context, cfg Config, stages Stages, progress ProgressReporter, scan *DomainScan) error {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	scanTimeout := cfg.ScanTimeout
	if scanTimeout <= 0 {
		scanTimeout = defaultScanTimeout
	}

	// Stage 1: advisory analyzer health probe. Failure only affects logging.
	progress.Stage(1, totalStages, "Checking analysis collaborator...")
	if stages.Analyzer != nil && !stages.Analyzer.Healthy(ctx) {
		progress.Warn("analysis collaborator is not responding; proceeding without advanced analysis")
	}

	// Stage 2: candidate enumeration. A total failure degrades to an empty
	// candidate set; the root domain is still scanned.
	progress.Stage(2, totalStages, "Enumerating subdomains...")
	candidates, err := stages.Enumerator.Enumerate(ctx, scan.Domain)
	if err != nil {
		progress.Warn(fmt.Sprintf("subdomain enumeration failed: %s", err))
		scan.Warnings = append(scan.Warnings, fmt.Sprintf("enumeration: %s", err))
		candidates = nil
	}
	candidates = dedupeCandidates(candidates, scan.Domain)
	progress.Detail(fmt.Sprintf("Found %d candidate subdomains", len(candidates)))

	// Stage 3: scan the root domain first, sequentially, so it is always
	// present in the result regardless of pool state or candidate count.
	progress.Stage(3, totalStages, fmt.Sprintf("Scanning root domain %s...", scan.Domain))
	rootCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	root := stages.Scanner.Scan(rootCtx, scan.Domain)
	cancel()
	scan.Subdomains = append(scan.Subdomains, root)

	if len(candidates) == 0 {
		return ctx.Err()
	}

	// Stage 4: bounded fan-out. Workers never share mutable state; each
	// produces an independent result appended under one lock at the join.
	progress.Stage(4, totalStages, fmt.Sprintf("Scanning %d subdomains with %d workers...", len(candidates), workers))

	work := make(chan string, len(candidates))
	for _, host := range candidates {
		work <- host
	}
	close(work)

	var (
		mu      sync.Mutex
		results []SubdomainResult
	)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}

				scanCtx, cancel := context.WithTimeout(ctx, scanTimeout)
				res := stages.Scanner.Scan(scanCtx, host)
				cancel()

				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	scan.Subdomains = append(scan.Subdomains, results...)
	return ctx.Err()
}

// dedupeCandidates lowercases, deduplicates, and drops the root domain
// itself (it is always scanned separately).
func dedupeCandidates(candidates []string, root string) []string {
	seen := map[string]bool{root: true}
	var out []string
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func buildSummary(scan *DomainScan) Summary {
	s := Summary{Candidates: len(scan.Subdomains)}
	for _, sub := range scan.Subdomains {
		switch sub.Status {
		case LivenessReachable:
			s.Reachable++
		case LivenessUnreachable:
			s.Unreachable++
		case LivenessNoOpenPorts:
			s.NoOpenPorts++
		case LivenessError:
			s.Errors++
		}
		s.OpenPortCount += len(sub.OpenPorts)
		s.PageCount += len(sub.Pages)
		s.TechCount += len(sub.Technologies)
	}
	return s
}
