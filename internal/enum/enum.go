// Package enum implements the subdomain enumeration collaborator: a
// fan-in over several passive sources plus DNS brute force and optional
// zone transfers.
package enum

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prowlsec/prowl/internal/engine"
)

// Source discovers candidate hostnames for a root domain. Sources are
// non-fatal: a failing source returns an error and contributes nothing.
type Source interface {
	Name() string
	Discover(ctx context.Context, domain string) ([]string, error)
}

// Enumerator fans out over its sources in parallel and merges their
// output into one lowercased, deduplicated candidate set. It implements
// engine.Enumerator.
type Enumerator struct {
	Sources  []Source
	Progress engine.ProgressReporter
}

// New assembles the standard source set: crt.sh, HackerTarget, AlienVault
// OTX, embedded-wordlist brute force, and optionally AXFR zone transfers.
func New(userAgent string, concurrency int, axfr bool) *Enumerator {
	e := &Enumerator{
		Sources: []Source{
			&crtshSource{UserAgent: userAgent},
			&hackertargetSource{UserAgent: userAgent},
			&otxSource{UserAgent: userAgent},
			&bruteSource{Concurrency: concurrency},
		},
	}
	if axfr {
		e.Sources = append(e.Sources, &axfrSource{})
	}
	return e
}

// Enumerate runs every source concurrently and merges the results. A
// source failure is reported as progress detail and skipped; Enumerate
// only fails when the context is cancelled.
func (e *Enumerator) Enumerate(ctx context.Context, domain string) ([]string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
	)

	var wg sync.WaitGroup
	for _, src := range e.Sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			hosts, err := src.Discover(ctx, domain)
			if err != nil {
				if e.Progress != nil {
					e.Progress.Warn(fmt.Sprintf("%s: %s", src.Name(), err))
				}
				return
			}

			kept := 0
			mu.Lock()
			for _, h := range hosts {
				h = normalizeHost(h, domain)
				if h == "" || seen[h] {
					continue
				}
				seen[h] = true
				kept++
			}
			mu.Unlock()

			if e.Progress != nil {
				e.Progress.Detail(fmt.Sprintf("%s: %d new subdomains", src.Name(), kept))
			}
		}(src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hosts := make([]string, 0, len(seen))
	for h := range seen {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts, nil
}

// normalizeHost lowercases a discovered name, strips wildcards, and drops
// anything outside the target domain. Returns "" for rejects.
func normalizeHost(host, domain string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "*.")
	host = strings.TrimSuffix(host, ".")
	if host == "" || strings.Contains(host, "*") {
		return ""
	}
	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return ""
	}
	return host
}

// fetchText GETs url with a bounded timeout and one retry on server
// errors, returning the response body. Shared by the passive sources.
func fetchText(ctx context.Context, url, userAgent string, timeout time.Duration, maxBody int64) ([]byte, error) {
	body, err := doRequest(ctx, url, userAgent, timeout, maxBody)
	if err == nil {
		return body, nil
	}

	// Don't retry on rate limits.
	if strings.Contains(err.Error(), "429") {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
	}

	return doRequest(ctx, url, userAgent, timeout, maxBody)
}

func doRequest(ctx context.Context, url, userAgent string, timeout time.Duration, maxBody int64) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return raw, nil
}
