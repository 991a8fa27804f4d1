package recon

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/prowlsec/prowl/pkg/ports"
)

const bannerMaxBytes = 1024

// ReadBanner opens a fresh connection to host:port, sends the
// protocol-appropriate greeting, and reads up to bannerMaxBytes within
// timeout. Banner absence is expected and non-fatal: any dial, write, or
// read failure yields the empty string.
func ReadBanner(ctx context.Context, host string, port int, timeout time.Duration) string {
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return ""
	}
	defer conn.Close()

	if g := greeting(host, port); len(g) > 0 {
		conn.SetWriteDeadline(time.Now().Add(timeout))
		if _, err := conn.Write(g); err != nil {
			return ""
		}
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, bannerMaxBytes)
	n, _ := conn.Read(buf)
	if n == 0 {
		return ""
	}
	return strings.TrimSpace(string(buf[:n]))
}

// greeting returns the probe bytes for a port: a minimal HEAD request for
// the HTTP family, HELP for FTP, EHLO for SMTP. Other ports only listen.
func greeting(host string, port int) []byte {
	switch {
	case ports.IsHTTPFamily(port):
		return []byte("HEAD / HTTP/1.0\r\nHost: " + host + "\r\n\r\n")
	case port == 21:
		return []byte("HELP\r\n")
	case port == 25:
		return []byte("EHLO example.com\r\n")
	}
	return nil
}
