// Package translate provides a client for a LibreTranslate-compatible
// translation API, used to localize game descriptions during ingestion.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"game-recommender-go/internal/config"
	"game-recommender-go/pkg/log"

	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrUnavailable wraps failures of the translation API, including an open breaker.
var ErrUnavailable = errors.New("translate: api unavailable")

// Client translates text into the configured target language.
type Client struct {
	baseURL string
	apiKey  string
	target  string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[string]
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// NewClient creates a translation client guarded by a circuit breaker.
func NewClient(cfg config.TranslateConfig) *Client {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	target := cfg.Target
	if target == "" {
		target = "ko"
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "translate-api",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("[Translate] 熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		target:  target,
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

// Translate returns text in the target language. Empty input is returned as is.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	out, err := c.cb.Execute(func() (string, error) {
		return c.call(ctx, text)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(translateRequest{Q: text, Source: "auto", Target: c.target, Format: "text", APIKey: c.apiKey})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call translate api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate api returned non-200 status: %s", resp.Status)
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode translate response: %w", err)
	}
	if out.TranslatedText == "" {
		return "", errors.New("translate api returned empty text")
	}
	return out.TranslatedText, nil
}
