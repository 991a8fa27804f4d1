package analyze

import (
	"context"
	"strings"
	"testing"

	"github.com/prowlsec/prowl/internal/engine"
)

func TestHeuristicAnalyze(t *testing.T) {
	findings := engine.Findings{
		Host: "www.example.com",
		OpenPorts: []engine.OpenPort{
			{Port: 22, State: "open", Service: "SSH", Version: "SSH-2.0-OpenSSH_8.9p1"},
			{Port: 443, State: "open", Service: "HTTP", Version: "unknown"},
		},
		Technologies: []string{"WordPress", "PHP", "WordPress"},
	}

	text, err := Heuristic{}.Analyze(context.Background(), findings)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	for _, want := range []string{
		"www.example.com",
		"2 open port(s)",
		"Port 22 (SSH)",
		"SSH-2.0-OpenSSH_8.9p1",
		"WordPress installations",
		"X-Powered-By",
		"Identified technologies: WordPress, PHP.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("commentary missing %q:\n%s", want, text)
		}
	}

	if n := strings.Count(text, "plugin vulnerabilities"); n != 1 {
		t.Errorf("duplicate technology commented %d times, want once", n)
	}
}

func TestHeuristicAnalyze_NoFindings(t *testing.T) {
	text, err := Heuristic{}.Analyze(context.Background(), engine.Findings{Host: "bare.example.com"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(text, "0 open port(s)") {
		t.Errorf("commentary = %q, want the zero-port count", text)
	}
	if strings.Contains(text, "Identified technologies") {
		t.Errorf("commentary lists technologies with none found: %q", text)
	}
}

func TestHeuristicHealthy(t *testing.T) {
	if !(Heuristic{}).Healthy(context.Background()) {
		t.Error("heuristic analyzer must always report healthy")
	}
}
