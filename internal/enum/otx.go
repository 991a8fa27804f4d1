package enum

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	otxBaseURL = "https://otx.alienvault.com/api/v1/indicators/domain/%s/passive_dns"
	otxTimeout = 15 * time.Second
	otxMaxBody = 10 * 1024 * 1024
)

// otxSource queries AlienVault OTX passive DNS.
type otxSource struct {
	UserAgent string
}

func (s *otxSource) Name() string { return "otx" }

func (s *otxSource) Discover(ctx context.Context, domain string) ([]string, error) {
	url := fmt.Sprintf(otxBaseURL, domain)

	body, err := fetchText(ctx, url, s.UserAgent, otxTimeout, otxMaxBody)
	if err != nil {
		return nil, fmt.Errorf("fetch for %s: %w", domain, err)
	}

	return parseOTXResponse(body)
}

type otxResponse struct {
	PassiveDNS []struct {
		Hostname string `json:"hostname"`
	} `json:"passive_dns"`
}

func parseOTXResponse(body []byte) ([]string, error) {
	var parsed otxResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("JSON parse: %w", err)
	}

	var hosts []string
	for _, entry := range parsed.PassiveDNS {
		if entry.Hostname != "" {
			hosts = append(hosts, entry.Hostname)
		}
	}
	return hosts, nil
}
