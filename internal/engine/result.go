// Package engine orchestrates the prowl recon pipeline.
package engine

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of a domain scan run.
type RunStatus string

const (
	StatusPending  RunStatus = "pending"
	StatusRunning  RunStatus = "running"
	StatusComplete RunStatus = "complete"
	StatusFailed   RunStatus = "failed"
)

// Liveness is the terminal state of a single subdomain scan.
type Liveness string

const (
	LivenessUnreachable Liveness = "unreachable"
	LivenessNoOpenPorts Liveness = "no_open_ports"
	LivenessReachable   Liveness = "reachable"
	LivenessError       Liveness = "error"
)

// DomainScan is the top-level output of a prowl run. At most one live scan
// exists per domain name; a new run replaces any prior record.
type DomainScan struct {
	ID           string            `json:"id"`
	Domain       string            `json:"domain"`
	Status       RunStatus         `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  time.Time         `json:"completed_at,omitempty"`
	DurationSecs float64           `json:"duration_secs"`
	Subdomains   []SubdomainResult `json:"subdomains"`
	Warnings     []string          `json:"warnings,omitempty"`
	Summary      Summary           `json:"summary"`
}

// SubdomainResult is the immutable record a single subdomain scan produces.
type SubdomainResult struct {
	Host         string        `json:"host"`
	IP           string        `json:"ip,omitempty"`
	Status       Liveness      `json:"status"`
	OpenPorts    []OpenPort    `json:"open_ports,omitempty"`
	Pages        []CrawledPage `json:"crawled_pages,omitempty"`
	Technologies []string      `json:"technologies,omitempty"`
	Analysis     string        `json:"analysis,omitempty"`
}

// OpenPort records one open port on a subdomain. State is always "open";
// closed ports are never recorded.
type OpenPort struct {
	Port    int    `json:"port"`
	State   string `json:"state"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// CrawledPage records one fetched page. Title falls back to the "No title"
// sentinel when the page has none.
type CrawledPage struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	StatusCode int    `json:"status_code"`
}

// Summary provides aggregate counts for the run.
type Summary struct {
	Candidates    int `json:"candidates"`
	Reachable     int `json:"reachable"`
	Unreachable   int `json:"unreachable"`
	NoOpenPorts   int `json:"no_open_ports"`
	Errors        int `json:"errors"`
	OpenPortCount int `json:"open_port_count"`
	PageCount     int `json:"page_count"`
	TechCount     int `json:"tech_count"`
}

// Findings is the structured input handed to the narrative analyzer.
type Findings struct {
	Host         string     `json:"host"`
	OpenPorts    []OpenPort `json:"open_ports"`
	Technologies []string   `json:"technologies"`
}

// Enumerator discovers candidate subdomains for a root domain.
type Enumerator interface {
	Enumerate(ctx context.Context, domain string) ([]string, error)
}

// SubdomainScanner runs the full per-subdomain scan. Implementations never
// return an error: every failure is absorbed into a terminal result.
type SubdomainScanner interface {
	Scan(ctx context.Context, host string) SubdomainResult
}

// Fingerprinter identifies web technologies on a URL. Implementations must
// not fail the caller; an unreachable or unparseable page yields nil.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, url string) []string
}

// Analyzer produces free-text security commentary from scan findings.
// It may be backed by a remote collaborator and may be unavailable.
type Analyzer interface {
	Analyze(ctx context.Context, findings Findings) (string, error)
	Healthy(ctx context.Context) bool
}

// Store persists domain scans keyed by domain name. Save has replace
// semantics: a new scan for an existing name supersedes the prior record.
type Store interface {
	Save(ctx context.Context, scan *DomainScan) error
	Get(ctx context.Context, domain string) (*DomainScan, error)
	Delete(ctx context.Context, domain string) error
}

// ProgressReporter is called by the engine to report stage progress.
type ProgressReporter interface {
	Stage(num, total int, msg string)
	Detail(msg string)
	Warn(msg string)
}
