package store

import (
	"context"
	"strings"
	"sync"

	"github.com/prowlsec/prowl/internal/engine"
)

// Memory is an in-process Store used by the CLI and tests. Snapshots are
// taken on Save and Get so callers can keep mutating their copy without
// aliasing the stored record.
type Memory struct {
	mu    sync.RWMutex
	scans map[string]*engine.DomainScan
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{scans: make(map[string]*engine.DomainScan)}
}

// Save replaces any stored scan for the same domain name.
func (m *Memory) Save(ctx context.Context, scan *engine.DomainScan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[strings.ToLower(scan.Domain)] = snapshot(scan)
	return nil
}

// Get returns the stored scan for a domain, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, domain string) (*engine.DomainScan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scan, ok := m.scans[strings.ToLower(domain)]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(scan), nil
}

// Delete removes the stored scan for a domain. Deleting an absent domain
// is not an error.
func (m *Memory) Delete(ctx context.Context, domain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scans, strings.ToLower(domain))
	return nil
}

func snapshot(scan *engine.DomainScan) *engine.DomainScan {
	cp := *scan
	cp.Subdomains = append([]engine.SubdomainResult(nil), scan.Subdomains...)
	cp.Warnings = append([]string(nil), scan.Warnings...)
	return &cp
}
