// Package notify delivers the post-run side effects: lead record
// persistence, requester email, and operator alert. All three are
// fire-and-forget webhooks with no retry contract; failures are logged and
// swallowed and can never affect a response that has already been
// computed.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/brightlisting/rewriter/internal/domain"
)

const defaultTimeout = 10 * time.Second

// Config holds the three webhook targets. Empty URLs disable that target.
type Config struct {
	LeadURL     string
	EmailURL    string
	OperatorURL string
	Timeout     time.Duration
	Headers     map[string]string
}

// Lead is the payload delivered to all three targets.
type Lead struct {
	Address             string            `json:"address"`
	Email               string            `json:"email,omitempty"`
	OriginalDescription string            `json:"original_description"`
	Variations          map[string]string `json:"variations"`
}

// Notifier posts lead payloads to the configured webhooks.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a Notifier.
func New(cfg Config, logger *slog.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// NotifyAll delivers the lead to every configured target concurrently and
// blocks until all deliveries finish or fail. Callers run it on its own
// goroutine with a detached context so it never delays the response.
func (n *Notifier) NotifyAll(ctx context.Context, input domain.ListingInput, variations map[domain.Tone]string) {
	lead := Lead{
		Address:             input.Address,
		Email:               input.Email,
		OriginalDescription: input.Description,
		Variations:          make(map[string]string, len(variations)),
	}
	for tone, text := range variations {
		lead.Variations[string(tone)] = text
	}

	targets := []struct {
		name string
		url  string
	}{
		{"lead_record", n.cfg.LeadURL},
		{"user_email", n.cfg.EmailURL},
		{"operator_alert", n.cfg.OperatorURL},
	}

	var wg sync.WaitGroup
	for _, t := range targets {
		if t.url == "" {
			continue
		}
		wg.Add(1)
		go func(name, url string) {
			defer wg.Done()
			if err := n.post(ctx, url, &lead); err != nil {
				n.logger.Warn("notification delivery failed",
					slog.String("target", name),
					slog.String("error", err.Error()),
				)
			}
		}(t.name, t.url)
	}
	wg.Wait()
}

func (n *Notifier) post(ctx context.Context, url string, lead *Lead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
