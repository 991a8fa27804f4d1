package recon

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/prowlsec/prowl/internal/engine"
)

func resolveTo(ip string) HostResolver {
	return func(ctx context.Context, host string) (string, error) {
		return ip, nil
	}
}

func resolveFail() HostResolver {
	return func(ctx context.Context, host string) (string, error) {
		return "", fmt.Errorf("no such host")
	}
}

type stubAnalyzer struct {
	text string
	err  error
}

func (a *stubAnalyzer) Analyze(ctx context.Context, f engine.Findings) (string, error) {
	return a.text, a.err
}

func (a *stubAnalyzer) Healthy(ctx context.Context) bool { return true }

type panickyFingerprinter struct{}

func (panickyFingerprinter) Fingerprint(ctx context.Context, url string) []string {
	panic("collaborator exploded")
}

func TestScanner_UnresolvableHost(t *testing.T) {
	s := &Scanner{Resolver: resolveFail()}

	res := s.Scan(context.Background(), "nope.example.com")

	if res.Status != engine.LivenessUnreachable {
		t.Errorf("status = %q, want unreachable", res.Status)
	}
	if res.IP != "" {
		t.Errorf("ip = %q, want empty", res.IP)
	}
	if len(res.OpenPorts) != 0 || len(res.Pages) != 0 || len(res.Technologies) != 0 {
		t.Error("unreachable result must have empty collections")
	}
	if res.Analysis != noteUnresolved {
		t.Errorf("analysis = %q, want the fixed resolve note", res.Analysis)
	}
}

func TestScanner_NoOpenPorts(t *testing.T) {
	// Reserve a port and close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	closedPort := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	s := &Scanner{
		Ports:       []int{closedPort},
		DialTimeout: 300 * time.Millisecond,
		Resolver:    resolveTo("127.0.0.1"),
		Analyzer:    &stubAnalyzer{text: "should not run"},
	}

	res := s.Scan(context.Background(), "a.example.com")

	if res.Status != engine.LivenessNoOpenPorts {
		t.Errorf("status = %q, want no_open_ports", res.Status)
	}
	if res.IP != "127.0.0.1" {
		t.Errorf("ip = %q, want 127.0.0.1", res.IP)
	}
	if len(res.OpenPorts) != 0 || len(res.Pages) != 0 || len(res.Technologies) != 0 {
		t.Error("no_open_ports result must have empty collections")
	}
	if res.Analysis != noteNoOpenPorts {
		t.Errorf("analysis = %q, want the fixed skip note", res.Analysis)
	}
}

func TestScanner_ReachableHost(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Write([]byte("SSH-2.0-OpenSSH_8.9p1\r\n"))
			time.Sleep(50 * time.Millisecond)
			conn.Close()
		}
	}()

	openPort := ln.Addr().(*net.TCPAddr).Port

	s := &Scanner{
		Ports:       []int{openPort},
		DialTimeout: 2 * time.Second,
		Resolver:    resolveTo("127.0.0.1"),
		Analyzer:    &stubAnalyzer{text: "looks risky"},
	}

	res := s.Scan(context.Background(), "b.example.com")

	if res.Status != engine.LivenessReachable {
		t.Fatalf("status = %q, want reachable", res.Status)
	}
	if len(res.OpenPorts) != 1 {
		t.Fatalf("open ports = %d, want 1", len(res.OpenPorts))
	}
	if res.OpenPorts[0].State != "open" {
		t.Errorf("state = %q, want open", res.OpenPorts[0].State)
	}
	if res.Analysis != "looks risky" {
		t.Errorf("analysis = %q, want analyzer output", res.Analysis)
	}
}

func TestScanner_AnalyzerFailureDegrades(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	s := &Scanner{
		Ports:       []int{ln.Addr().(*net.TCPAddr).Port},
		DialTimeout: 2 * time.Second,
		Resolver:    resolveTo("127.0.0.1"),
		Analyzer:    &stubAnalyzer{err: fmt.Errorf("collaborator down")},
	}

	res := s.Scan(context.Background(), "c.example.com")

	if res.Status != engine.LivenessReachable {
		t.Fatalf("status = %q, want reachable despite analyzer failure", res.Status)
	}
	if res.Analysis != noteAnalysisFailed {
		t.Errorf("analysis = %q, want the fixed fallback note", res.Analysis)
	}
}

func TestScanner_PanicBecomesErrorResult(t *testing.T) {
	s := &Scanner{
		Resolver: func(ctx context.Context, host string) (string, error) {
			panic("resolver exploded")
		},
	}

	res := s.Scan(context.Background(), "d.example.com")

	if res.Status != engine.LivenessError {
		t.Errorf("status = %q, want error terminal", res.Status)
	}
	if res.Host != "d.example.com" {
		t.Errorf("host = %q, want preserved", res.Host)
	}
	if len(res.OpenPorts) != 0 || len(res.Pages) != 0 || len(res.Technologies) != 0 {
		t.Error("error result must have empty collections")
	}
	if res.Analysis != noteScanError {
		t.Errorf("analysis = %q, want the fixed error note", res.Analysis)
	}
}

var _ engine.Fingerprinter = panickyFingerprinter{}

func TestScanner_NeverPropagatesPanics(t *testing.T) {
	// Even a panicking collaborator wired into the scan must be absorbed.
	s := &Scanner{
		Resolver:      resolveTo("127.0.0.1"),
		Ports:         []int{1}, // almost certainly closed
		DialTimeout:   200 * time.Millisecond,
		Fingerprinter: panickyFingerprinter{},
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("scanner let a panic escape: %v", r)
		}
	}()

	res := s.Scan(context.Background(), "e.example.com")
	if res.Status == "" {
		t.Error("result must carry a terminal status")
	}
}
