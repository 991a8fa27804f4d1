package engine

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// Mock implementations for testing.

type mockEnumerator struct {
	candidates []string
	err        error
}

func (m *mockEnumerator) Enumerate(ctx context.Context, domain string) ([]string, error) {
	return m.candidates, m.err
}

type mockScanner struct {
	results map[string]SubdomainResult
}

func (m *mockScanner) Scan(ctx context.Context, host string) SubdomainResult {
	if res, ok := m.results[host]; ok {
		return res
	}
	return SubdomainResult{Host: host, Status: LivenessUnreachable}
}

type mockAnalyzer struct {
	healthy bool
}

func (m *mockAnalyzer) Analyze(ctx context.Context, f Findings) (string, error) {
	return "analysis for " + f.Host, nil
}

func (m *mockAnalyzer) Healthy(ctx context.Context) bool { return m.healthy }

type mockStore struct {
	saves   []DomainScan
	saveErr error
}

func (m *mockStore) Save(ctx context.Context, scan *DomainScan) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves = append(m.saves, *scan)
	return nil
}

func (m *mockStore) Get(ctx context.Context, domain string) (*DomainScan, error) {
	for i := len(m.saves) - 1; i >= 0; i-- {
		if m.saves[i].Domain == domain {
			scan := m.saves[i]
			return &scan, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockStore) Delete(ctx context.Context, domain string) error { return nil }

type noopProgress struct{}

func (p *noopProgress) Stage(num, total int, msg string) {}
func (p *noopProgress) Detail(msg string)                {}
func (p *noopProgress) Warn(msg string)                  {}

func TestRun_FullPipeline(t *testing.T) {
	st := &mockStore{}
	stages := Stages{
		Enumerator: &mockEnumerator{candidates: []string{"a.example.com", "b.example.com"}},
		Scanner: &mockScanner{results: map[string]SubdomainResult{
			"example.com": {
				Host: "example.com", IP: "1.2.3.4", Status: LivenessReachable,
				OpenPorts: []OpenPort{{Port: 443, State: "open", Service: "HTTP", Version: "nginx/1.18"}},
				Pages:     []CrawledPage{{URL: "https://example.com", Title: "Example", StatusCode: 200}},
			},
			"a.example.com": {
				Host: "a.example.com", IP: "1.2.3.5", Status: LivenessNoOpenPorts,
			},
		}},
		Analyzer: &mockAnalyzer{healthy: true},
		Store:    st,
	}

	cfg := Config{Target: "example.com", Workers: 4, ScanTimeout: time.Second}

	scan, err := Run(context.Background(), cfg, stages, &noopProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scan.Status != StatusComplete {
		t.Errorf("status = %q, want %q", scan.Status, StatusComplete)
	}
	if len(scan.Subdomains) != 3 {
		t.Fatalf("subdomains = %d, want 3", len(scan.Subdomains))
	}

	// Root is scanned first and therefore always leads the results.
	if scan.Subdomains[0].Host != "example.com" {
		t.Errorf("first result = %q, want root domain", scan.Subdomains[0].Host)
	}

	if scan.Summary.Candidates != 3 {
		t.Errorf("summary candidates = %d, want 3", scan.Summary.Candidates)
	}
	if scan.Summary.Reachable != 1 {
		t.Errorf("summary reachable = %d, want 1", scan.Summary.Reachable)
	}
	if scan.Summary.Unreachable != 1 {
		t.Errorf("summary unreachable = %d, want 1", scan.Summary.Unreachable)
	}
	if scan.Summary.OpenPortCount != 1 {
		t.Errorf("summary open ports = %d, want 1", scan.Summary.OpenPortCount)
	}
	if scan.DurationSecs < 0 {
		t.Error("duration should not be negative")
	}

	// Two persists: the running record and the terminal record.
	if len(st.saves) != 2 {
		t.Fatalf("store saves = %d, want 2", len(st.saves))
	}
	if st.saves[0].Status != StatusRunning {
		t.Errorf("first save status = %q, want running", st.saves[0].Status)
	}
	if st.saves[1].Status != StatusComplete {
		t.Errorf("final save status = %q, want complete", st.saves[1].Status)
	}
}

func TestRun_EmptyEnumerationStillScansRoot(t *testing.T) {
	stages := Stages{
		Enumerator: &mockEnumerator{},
		Scanner: &mockScanner{results: map[string]SubdomainResult{
			"example.com": {Host: "example.com", IP: "1.2.3.4", Status: LivenessReachable,
				OpenPorts: []OpenPort{{Port: 80, State: "open", Service: "HTTP", Version: "unknown"}}},
		}},
		Store: &mockStore{},
	}

	scan, err := Run(context.Background(), Config{Target: "example.com"}, stages, &noopProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if scan.Status != StatusComplete {
		t.Errorf("status = %q, want complete", scan.Status)
	}
	if len(scan.Subdomains) != 1 || scan.Subdomains[0].Host != "example.com" {
		t.Fatalf("expected exactly the root result, got %v", scan.Subdomains)
	}
}

func TestRun_EnumerationFailureIsNonFatal(t *testing.T) {
	stages := Stages{
		Enumerator: &mockEnumerator{err: fmt.Errorf("all sources down")},
		Scanner:    &mockScanner{},
		Store:      &mockStore{},
	}

	scan, err := Run(context.Background(), Config{Target: "example.com"}, stages, &noopProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scan.Status != StatusComplete {
		t.Errorf("status = %q, want complete", scan.Status)
	}
	if len(scan.Warnings) == 0 {
		t.Error("expected an enumeration warning on the scan")
	}
}

func TestRun_CandidatesDeduplicatedAndRootExcluded(t *testing.T) {
	stages := Stages{
		Enumerator: &mockEnumerator{candidates: []string{
			"Example.com", "a.example.com", "A.EXAMPLE.COM", "a.example.com",
		}},
		Scanner: &mockScanner{},
		Store:   &mockStore{},
	}

	scan, err := Run(context.Background(), Config{Target: "example.com"}, stages, &noopProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Root + one deduplicated candidate.
	if len(scan.Subdomains) != 2 {
		t.Fatalf("subdomains = %d, want 2: %v", len(scan.Subdomains), scan.Subdomains)
	}
}

func TestRun_StoreCreateFailure(t *testing.T) {
	stages := Stages{
		Enumerator: &mockEnumerator{},
		Scanner:    &mockScanner{},
		Store:      &mockStore{saveErr: fmt.Errorf("connection refused")},
	}

	scan, err := Run(context.Background(), Config{Target: "example.com"}, stages, &noopProgress{})
	if err == nil {
		t.Fatal("expected error when the scan record cannot be created")
	}
	if scan != nil {
		t.Errorf("expected nil scan, got %+v", scan)
	}
}

func TestRun_ReplacesPriorScan(t *testing.T) {
	st := &mockStore{}
	stages := Stages{
		Enumerator: &mockEnumerator{candidates: []string{"a.example.com"}},
		Scanner:    &mockScanner{},
		Store:      st,
	}

	first, err := Run(context.Background(), Config{Target: "example.com"}, stages, &noopProgress{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := Run(context.Background(), Config{Target: "example.com"}, stages, &noopProgress{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.ID == second.ID {
		t.Error("each run must create a fresh scan identity")
	}

	stored, err := st.Get(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ID != second.ID {
		t.Errorf("stored scan id = %q, want the superseding run %q", stored.ID, second.ID)
	}
	if len(stored.Subdomains) != 2 {
		t.Errorf("stored subdomains = %d, want 2 (no merged entries)", len(stored.Subdomains))
	}
}

func TestRun_WorkerPoolScansEveryCandidate(t *testing.T) {
	var candidates []string
	results := map[string]SubdomainResult{}
	for i := 0; i < 50; i++ {
		host := fmt.Sprintf("host%d.example.com", i)
		candidates = append(candidates, host)
		results[host] = SubdomainResult{Host: host, Status: LivenessNoOpenPorts}
	}

	stages := Stages{
		Enumerator: &mockEnumerator{candidates: candidates},
		Scanner:    &mockScanner{results: results},
		Store:      &mockStore{},
	}

	scan, err := Run(context.Background(), Config{Target: "example.com", Workers: 10}, stages, &noopProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(scan.Subdomains) != 51 {
		t.Fatalf("subdomains = %d, want 51", len(scan.Subdomains))
	}

	seen := make(map[string]int)
	for _, sub := range scan.Subdomains {
		seen[sub.Host]++
	}
	for host, n := range seen {
		if n != 1 {
			t.Errorf("host %s recorded %d times, want exactly once", host, n)
		}
	}
}
