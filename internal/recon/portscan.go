// Package recon implements the per-subdomain reconnaissance stages.
package recon

import (
	"context"
	"net"
	"strconv"
	"time"
)

// ProbePort attempts a TCP connect to host:port within timeout. Any
// connection failure (refused, timed out, unreachable) reports closed; no
// distinction between causes is surfaced. The connection is always closed
// before returning.
func ProbePort(ctx context.Context, host string, port int, timeout time.Duration) bool {
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
