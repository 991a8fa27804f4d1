package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prowlsec/prowl/internal/engine"
)

const (
	remoteTimeout = 30 * time.Second
	remoteMaxBody = 1024 * 1024
)

// Remote is an Analyzer backed by an external HTTP collaborator. The
// endpoint receives the findings plus a prompt as JSON and answers with
// {"analysis": "..."}. The collaborator may be unavailable; callers
// substitute the fixed fallback note on error.
type Remote struct {
	URL    string
	APIKey string
	Client *http.Client
}

// NewRemote builds a remote analyzer for the given endpoint.
func NewRemote(url, apiKey string) *Remote {
	return &Remote{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: remoteTimeout},
	}
}

type remoteRequest struct {
	Prompt   string          `json:"prompt"`
	Findings engine.Findings `json:"findings"`
}

type remoteResponse struct {
	Analysis string `json:"analysis"`
}

// Healthy sends a minimal probe request. Failure is advisory only: the
// orchestrator logs it and proceeds without gating the run.
func (r *Remote) Healthy(ctx context.Context) bool {
	_, err := r.post(ctx, remoteRequest{Prompt: "Test"})
	return err == nil
}

// Analyze asks the collaborator for commentary on the findings.
func (r *Remote) Analyze(ctx context.Context, f engine.Findings) (string, error) {
	prompt := fmt.Sprintf(
		"Analyze the following subdomain information and provide a summary of potential security implications based on the open ports, services, and identified technologies for %s.",
		f.Host,
	)

	text, err := r.post(ctx, remoteRequest{Prompt: prompt, Findings: f})
	if err != nil {
		return "", fmt.Errorf("remote analysis for %s: %w", f.Host, err)
	}
	return text, nil
}

func (r *Remote) post(ctx context.Context, payload remoteRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analysis endpoint returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, remoteMaxBody))
	if err != nil {
		return "", err
	}

	var parsed remoteResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("analysis response parse: %w", err)
	}
	if parsed.Analysis == "" {
		return "", fmt.Errorf("analysis endpoint returned an empty response")
	}
	return parsed.Analysis, nil
}
