// Package roster fetches fantasy roster data from the roster service,
// keeping the last good payload as a fallback for upstream outages.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goalfeed/videprinter/internal/domain/model"
	"github.com/goalfeed/videprinter/pkg/logger"
)

// ErrFetchFailed indicates the roster service could not be reached and no
// previous payload is available.
var ErrFetchFailed = errors.New("roster fetch failed")

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 8 << 20
)

// Payload is one roster snapshot.
type Payload struct {
	Players     []model.RosterEntry `json:"players"`
	Goalkeepers []model.RosterEntry `json:"goalkeepers"`
}

type rosterResponse struct {
	Data Payload `json:"data"`
}

// Client fetches roster snapshots over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger

	mu       sync.Mutex
	lastGood *Payload
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient constructs a Client for the given roster service base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("roster")
	}
	return c
}

// Fetch returns the current roster snapshot. When the upstream fails and a
// previous snapshot exists, that snapshot is returned instead with a nil
// error; the failure is only surfaced when there is nothing to fall back on.
func (c *Client) Fetch(ctx context.Context) (Payload, error) {
	payload, err := c.fetch(ctx)
	if err == nil {
		c.mu.Lock()
		c.lastGood = &payload
		c.mu.Unlock()
		return payload, nil
	}

	c.mu.Lock()
	fallback := c.lastGood
	c.mu.Unlock()
	if fallback != nil {
		c.log.Warn(ctx, "roster fetch failed, serving last good payload", logger.Error(err))
		return *fallback, nil
	}
	return Payload{}, err
}

func (c *Client) fetch(ctx context.Context) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/roster", nil)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	var parsed rosterResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return parsed.Data, nil
}
