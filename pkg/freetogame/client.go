// Package freetogame provides a client for the FreeToGame public catalog API.
package freetogame

import (
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

// ErrUnavailable wraps failures of the upstream API, including an open breaker.
var ErrUnavailable = errors.New("freetogame: api unavailable")

// Game is one entry of GET /games.
type Game struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Thumbnail        string `json:"thumbnail"`
	ShortDescription string `json:"short_description"`
	GameURL          string `json:"game_url"`
	Genre            string `json:"genre"`
	Platform         string `json:"platform"`
	Publisher        string `json:"publisher"`
	Developer        string `json:"developer"`
	ReleaseDate      string `json:"release_date"`
	ProfileURL       string `json:"freetogame_profile_url"`
}

// Client defines the interface for a catalog client.
type Client interface {
	ListGames(ctx context.Context) ([]Game, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]Game]
}

// NewClient creates a catalog client guarded by a circuit breaker.
func NewClient(cfg config.FreeToGameConfig) Client {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[[]Game](gobreaker.Settings{
		Name:        "freetogame-api",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("[FreeToGame] 熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &httpClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

// ListGames fetches the full catalog.
func (c *httpClient) ListGames(ctx context.Context) ([]Game, error) {
	games, err := c.cb.Execute(func() ([]Game, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return games, nil
}

func (c *httpClient) fetch(ctx context.Context) ([]Game, error) {
	log.Infof("[FreeToGame] 开始拉取游戏目录: %s/games", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/games", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call freetogame api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freetogame api returned non-200 status: %s", resp.Status)
	}

	var games []Game
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, fmt.Errorf("failed to decode freetogame response: %w", err)
	}
	log.Infof("[FreeToGame] 拉取成功，共 %d 个游戏", len(games))
	return games, nil
}
