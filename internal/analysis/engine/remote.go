package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	projects "github.com/sciome/bmdexpress-web/internal/projects/domain"
)

// Remote delegates analyses to an external analysis service.
type Remote struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemote creates a client for the analysis service at baseURL. A zero
// timeout leaves requests unbounded.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Analyze(ctx context.Context, req Request) (*projects.CategoryResult, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/category-analysis", r.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call analysis engine: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("analysis engine returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result projects.CategoryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}
