package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/pkg/logger"
	"github.com/goalfeed/videprinter/pkg/metrics"
)

const (
	defaultRequestTimeout = 10 * time.Second
	maxResponseBytes      = 4 << 20
)

// ClientConfig configures the live feed client.
type ClientConfig struct {
	BaseURL string
	Key     string
	Secret  string
	Timeout time.Duration
}

// Client fetches live matches and per-match events from the upstream feed.
// All requests pass through a circuit breaker so a failing upstream is
// backed off instead of hammered.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	log     logger.Logger
}

// NewClient constructs a Client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.Get().Named("provider"),
	}

	settings := gobreaker.Settings{
		Name:        "live-feed",
		MaxRequests: 2,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*2 >= counts.Requests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(name, breakerStateValue(to))
			c.log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](settings)
	return c
}

// breakerStateValue maps breaker states onto a gauge: closed 0, half-open 1,
// open 2.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// LiveMatches fetches the list of currently live fixtures.
func (c *Client) LiveMatches(ctx context.Context) ([]model.RawMatch, error) {
	body, err := c.get(ctx, c.cfg.BaseURL+"/matches/live.json", nil)
	if err != nil {
		return nil, err
	}

	var resp liveMatchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: success=false", ErrBadResponse)
	}

	out := make([]model.RawMatch, 0, len(resp.Data.Match))
	for _, m := range resp.Data.Match {
		out = append(out, m.toModel())
	}
	return out, nil
}

// MatchEvents fetches the goal events of one fixture. When the fixture
// carries its own events URL that endpoint is used; otherwise the shared
// events endpoint is queried by fixture id.
func (c *Client) MatchEvents(ctx context.Context, m model.RawMatch) ([]model.RawGoal, error) {
	endpoint := m.EventsURL
	query := url.Values{}
	if endpoint == "" {
		endpoint = c.cfg.BaseURL + "/scores/events.json"
		query.Set("id", m.ID)
	}

	body, err := c.get(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	var resp matchEventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: success=false", ErrBadResponse)
	}

	out := make([]model.RawGoal, 0, len(resp.Data.Event))
	for _, e := range resp.Data.Event {
		if !isGoalEvent(e.Event) {
			continue
		}
		out = append(out, e.toModel())
	}
	return out, nil
}

// get issues a request against a full endpoint URL. Query parameters already
// present on the endpoint are preserved; the caller's parameters and the API
// credentials are merged on top.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	merged := u.Query()
	for k, vs := range query {
		merged[k] = vs
	}
	merged.Set("key", c.cfg.Key)
	merged.Set("secret", c.cfg.Secret)
	u.RawQuery = merged.Encode()

	metrics.RecordProviderRequest()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, u.String())
	})
	if err != nil {
		metrics.RecordProviderError()
		return nil, err
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return body, nil
}
