package enum

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	crtshBaseURL = "https://crt.sh/?q=%%25.%s&output=json"
	crtshTimeout = 30 * time.Second
	crtshMaxBody = 50 * 1024 * 1024
)

// crtshSource queries crt.sh Certificate Transparency logs.
type crtshSource struct {
	UserAgent string
}

func (s *crtshSource) Name() string { return "crt.sh" }

func (s *crtshSource) Discover(ctx context.Context, domain string) ([]string, error) {
	url := fmt.Sprintf(crtshBaseURL, domain)

	body, err := fetchText(ctx, url, s.UserAgent, crtshTimeout, crtshMaxBody)
	if err != nil {
		return nil, fmt.Errorf("fetch for %s: %w", domain, err)
	}

	return parseCrtshResponse(body)
}

type crtshEntry struct {
	NameValue string `json:"name_value"`
}

// parseCrtshResponse extracts hostnames from the crt.sh JSON payload. A
// single name_value may hold multiple names separated by newlines.
func parseCrtshResponse(body []byte) ([]string, error) {
	var entries []crtshEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("JSON parse: %w", err)
	}

	var hosts []string
	for _, entry := range entries {
		for _, name := range strings.Split(entry.NameValue, "\n") {
			if name = strings.TrimSpace(name); name != "" {
				hosts = append(hosts, name)
			}
		}
	}
	return hosts, nil
}
