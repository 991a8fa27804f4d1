package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prowlsec/prowl/internal/engine"
)

// Postgres is a Store backed by a Postgres pool. The full scan document is
// stored as JSONB alongside the columns the API queries by.
type Postgres struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() { p.pool.Close() }

// Save replaces the scan record for the domain: delete-then-create in one
// transaction, so readers never observe a merged or duplicated result.
func (p *Postgres) Save(ctx context.Context, scan *engine.DomainScan) error {
	payload, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("encode scan for %s: %w", scan.Domain, err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	name := strings.ToLower(scan.Domain)
	if _, err := tx.Exec(ctx, `DELETE FROM domain_scans WHERE domain = $1`, name); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO domain_scans (id, domain, status, created_at, result)
		VALUES ($1, $2, $3, $4, $5)
	`, scan.ID, name, string(scan.Status), scan.CreatedAt, payload)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Get returns the stored scan for a domain, or ErrNotFound.
func (p *Postgres) Get(ctx context.Context, domain string) (*engine.DomainScan, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT result FROM domain_scans WHERE domain = $1`,
		strings.ToLower(domain),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var scan engine.DomainScan
	if err := json.Unmarshal(payload, &scan); err != nil {
		return nil, fmt.Errorf("decode scan for %s: %w", domain, err)
	}
	return &scan, nil
}

// Delete removes the stored scan for a domain.
func (p *Postgres) Delete(ctx context.Context, domain string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM domain_scans WHERE domain = $1`,
		strings.ToLower(domain),
	)
	return err
}
