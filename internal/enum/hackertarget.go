package enum

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	hackertargetBaseURL = "https://api.hackertarget.com/hostsearch/?q=%s"
	hackertargetTimeout = 10 * time.Second
	hackertargetMaxBody = 5 * 1024 * 1024
	hackertargetRateMsg = "API count exceeded"
)

// hackertargetSource queries the HackerTarget host search API.
type hackertargetSource struct {
	UserAgent string
}

func (s *hackertargetSource) Name() string { return "hackertarget" }

func (s *hackertargetSource) Discover(ctx context.Context, domain string) ([]string, error) {
	url := fmt.Sprintf(hackertargetBaseURL, domain)

	body, err := fetchText(ctx, url, s.UserAgent, hackertargetTimeout, hackertargetMaxBody)
	if err != nil {
		return nil, fmt.Errorf("fetch for %s: %w", domain, err)
	}

	// HackerTarget reports rate limiting as a plain-text body.
	if strings.Contains(string(body), hackertargetRateMsg) {
		return nil, fmt.Errorf("%s", hackertargetRateMsg)
	}

	return parseHackertargetResponse(string(body)), nil
}

// parseHackertargetResponse parses the plain-text "host,ip" line format.
func parseHackertargetResponse(body string) []string {
	var hosts []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if host := strings.TrimSpace(parts[0]); host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
