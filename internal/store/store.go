// Package store implements the persistence collaborator: domain scans
// keyed by root domain name with replace-on-save semantics.
package store

import "errors"

// ErrNotFound is returned by Get when no scan exists for a domain name.
var ErrNotFound = errors.New("domain scan not found")
