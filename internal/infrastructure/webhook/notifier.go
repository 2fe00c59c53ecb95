// Package webhook posts run reports as JSON to a configured endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

// Notifier posts the full run report to one HTTP endpoint, optionally
// authenticated with a bearer token.
type Notifier struct {
	endpoint string
	token    string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the endpoint and its token.
func NewNotifier(endpoint, token string) *Notifier {
	return &Notifier{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// PublishReport sends the report as a JSON body.
func (n *Notifier) PublishReport(ctx context.Context, report domain.RunReport) error {
	if n.endpoint == "" {
		return fmt.Errorf("webhook notifier misconfigured")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook error %s: %s", resp.Status, string(snippet))
	}

	return nil
}
