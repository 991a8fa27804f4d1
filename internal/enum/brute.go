package enum

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/prowlsec/prowl/internal/wordlist"
)

// bruteSource performs DNS brute-force enumeration using the embedded
// wordlist. Only names that resolve are reported.
type bruteSource struct {
	Concurrency int
}

func (s *bruteSource) Name() string { return "brute" }

func (s *bruteSource) Discover(ctx context.Context, domain string) ([]string, error) {
	words := wordlist.Subdomains()
	if len(words) == 0 {
		return nil, fmt.Errorf("empty subdomain wordlist")
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	work := make(chan string, len(words))
	for _, w := range words {
		work <- fmt.Sprintf("%s.%s", w, domain)
	}
	close(work)

	var (
		mu    sync.Mutex
		found []string
	)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}

				ips, err := net.DefaultResolver.LookupHost(ctx, host)
				if err != nil || len(ips) == 0 {
					continue
				}

				mu.Lock()
				found = append(found, strings.ToLower(host))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return found, nil
}
