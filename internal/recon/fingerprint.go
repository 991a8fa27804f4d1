package recon

import (
	"context"
	"crypto/tls"
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

//go:embed fingerprints.json
var fingerprintsJSON []byte

// fingerprintRule defines a pattern-matching rule for technology detection.
type fingerprintRule struct {
	Name    string        `json:"name"`
	Headers []headerMatch `json:"headers,omitempty"`
	Body    []string      `json:"body,omitempty"`
	Cookies []string      `json:"cookies,omitempty"`
}

type headerMatch struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	regex   *regexp.Regexp
}

var (
	fingerprintRules []fingerprintRule
	fingerprintOnce  sync.Once
)

func loadFingerprints() {
	fingerprintOnce.Do(func() {
		if err := json.Unmarshal(fingerprintsJSON, &fingerprintRules); err != nil {
			return
		}
		for i := range fingerprintRules {
			for j := range fingerprintRules[i].Headers {
				h := &fingerprintRules[i].Headers[j]
				if h.Pattern != "" {
					h.regex, _ = regexp.Compile("(?i)" + h.Pattern)
				}
			}
		}
	})
}

// Fingerprinter identifies web technologies by matching embedded signature
// rules against a URL's response headers, body, and cookies. It implements
// engine.Fingerprinter.
type Fingerprinter struct {
	Client    *http.Client
	UserAgent string
}

// NewFingerprinter builds a fingerprinter with a bounded request timeout.
func NewFingerprinter(timeout time.Duration, userAgent string) *Fingerprinter {
	return &Fingerprinter{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		UserAgent: userAgent,
	}
}

// Fingerprint fetches url once and returns the names of every matching
// technology. It never fails the caller: an unreachable or unparseable
// page yields nil.
func (f *Fingerprinter) Fingerprint(ctx context.Context, url string) []string {
	loadFingerprints()

	data := f.probe(ctx, url)
	if data == nil {
		return nil
	}

	var techs []string
	for _, rule := range fingerprintRules {
		if matchesRule(rule, data) {
			techs = append(techs, rule.Name)
		}
	}
	return techs
}

// probeData holds the raw HTTP response data rules are matched against.
type probeData struct {
	headers map[string]string // lowercase header name -> value
	body    string
	cookies []string // cookie names
}

func (f *Fingerprinter) probe(ctx context.Context, url string) *probeData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, crawlMaxBody))

	headers := make(map[string]string)
	for name, vals := range resp.Header {
		if len(vals) > 0 {
			headers[strings.ToLower(name)] = vals[0]
		}
	}

	var cookieNames []string
	for _, c := range resp.Cookies() {
		cookieNames = append(cookieNames, c.Name)
	}

	return &probeData{
		headers: headers,
		body:    string(body),
		cookies: cookieNames,
	}
}

func matchesRule(rule fingerprintRule, data *probeData) bool {
	for _, hm := range rule.Headers {
		headerVal, exists := data.headers[strings.ToLower(hm.Name)]
		if !exists {
			continue
		}
		if hm.regex != nil && hm.regex.MatchString(headerVal) {
			return true
		}
		if hm.Pattern == "" && headerVal != "" {
			return true
		}
	}

	bodyLower := strings.ToLower(data.body)
	for _, substr := range rule.Body {
		if strings.Contains(bodyLower, strings.ToLower(substr)) {
			return true
		}
	}

	for _, cookieName := range rule.Cookies {
		for _, c := range data.cookies {
			if strings.EqualFold(c, cookieName) {
				return true
			}
		}
	}

	return false
}
