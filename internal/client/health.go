package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ProbeHealth hits the backend's REST health endpoint. Purely
// diagnostic; the collaboration connection does not depend on it.
func ProbeHealth(ctx context.Context, httpClient *http.Client, baseURL string) error {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	url := strings.TrimRight(baseURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health probe: status %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("health probe: status %q", body.Status)
	}
	return nil
}
