package enum

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const (
	axfrDialTimeout = 10 * time.Second
	axfrReadTimeout = 30 * time.Second
)

// axfrSource attempts DNS zone transfers against the domain's nameservers.
// Most nameservers refuse AXFR; a refusal is not an error for the source as
// a whole, only a nameserver that yielded nothing.
type axfrSource struct{}

func (s *axfrSource) Name() string { return "axfr" }

func (s *axfrSource) Discover(ctx context.Context, domain string) ([]string, error) {
	nameservers, err := net.DefaultResolver.LookupNS(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("NS lookup for %s: %w", domain, err)
	}
	if len(nameservers) == 0 {
		return nil, fmt.Errorf("no NS records for %s", domain)
	}

	seen := make(map[string]bool)
	var hosts []string

	for _, ns := range nameservers {
		select {
		case <-ctx.Done():
			return hosts, ctx.Err()
		default:
		}

		names, err := transferZone(domain, strings.TrimSuffix(ns.Host, "."))
		if err != nil {
			continue
		}
		for _, h := range names {
			if !seen[h] {
				seen[h] = true
				hosts = append(hosts, h)
			}
		}
	}

	return hosts, nil
}

// transferZone performs an AXFR against a single nameserver and returns
// the in-zone hostnames it disclosed.
func transferZone(domain, nameserver string) ([]string, error) {
	transfer := &dns.Transfer{
		DialTimeout: axfrDialTimeout,
		ReadTimeout: axfrReadTimeout,
	}

	msg := new(dns.Msg)
	msg.SetAxfr(dns.Fqdn(domain))

	channel, err := transfer.In(msg, net.JoinHostPort(nameserver, "53"))
	if err != nil {
		return nil, fmt.Errorf("AXFR to %s: %w", nameserver, err)
	}

	suffix := "." + strings.ToLower(domain)
	seen := make(map[string]bool)
	var hosts []string

	for envelope := range channel {
		if envelope.Error != nil {
			return nil, fmt.Errorf("AXFR envelope from %s: %w", nameserver, envelope.Error)
		}
		for _, rr := range envelope.RR {
			name := strings.ToLower(strings.TrimSuffix(rr.Header().Name, "."))
			if name == "" {
				continue
			}
			if !strings.HasSuffix(name, suffix) && name != strings.ToLower(domain) {
				continue
			}
			if !seen[name] {
				seen[name] = true
				hosts = append(hosts, name)
			}
		}
	}

	return hosts, nil
}
