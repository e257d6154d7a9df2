// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep defaults in New and let Load layer file/env on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Provider names accepted by the data source configuration.
const (
	ProviderMock      = "mock"
	ProviderLiveScore = "live-score"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3002".
	Addr string `koanf:"addr"`

	// PollIntervalMS is the delay scheduled after each completed poll tick.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// QuietHoursStart/QuietHoursEnd suppress polling inside the local-hour
	// window [start, end). The range may wrap past midnight. Both -1 disables.
	QuietHoursStart int `koanf:"quiet_hours_start"`
	QuietHoursEnd   int `koanf:"quiet_hours_end"`

	// DedupeSize bounds the recently-seen event id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ReplaySize bounds the replay buffer for late subscribers.
	ReplaySize int `koanf:"replay_size"`

	// HistoryMaxLimit caps GET /videprinter/history?limit.
	HistoryMaxLimit int `koanf:"history_max_limit"`

	// HeartbeatIntervalMS sets the broadcaster heartbeat period.
	HeartbeatIntervalMS int `koanf:"heartbeat_interval_ms"`

	// Provider selects the upstream data source: "mock" or "live-score".
	Provider string `koanf:"provider"`

	// Live score provider credentials and endpoint.
	ProviderBaseURL string `koanf:"provider_base_url"`
	ProviderKey     string `koanf:"provider_key"`
	ProviderSecret  string `koanf:"provider_secret"`

	// Competitions is the allow-list of upstream competition ids.
	Competitions []string `koanf:"competitions"`

	// DailyRequestCap limits external provider requests per UTC day.
	// Zero or negative means unbounded.
	DailyRequestCap int `koanf:"daily_request_cap"`

	// Fantasy roster enrichment.
	RosterEnabled   bool   `koanf:"roster_enabled"`
	RosterBaseURL   string `koanf:"roster_base_url"`
	RosterRefreshMS int    `koanf:"roster_refresh_ms"`

	// Persistence.
	PersistenceEnabled bool   `koanf:"persistence_enabled"`
	DatabaseURL        string `koanf:"database_url"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":3002",
		PollIntervalMS:      30_000,
		QuietHoursStart:     -1,
		QuietHoursEnd:       -1,
		DedupeSize:          1000,
		ReplaySize:          500,
		HistoryMaxLimit:     500,
		HeartbeatIntervalMS: 20_000,
		Provider:            ProviderMock,
		ProviderBaseURL:     "https://livescore-api.com",
		Competitions:        []string{"77", "82", "83", "152", "150"},
		DailyRequestCap:     1000,
		RosterEnabled:       false,
		RosterRefreshMS:     300_000,
		PersistenceEnabled:  false,
		DatabaseURL:         "postgres://localhost:5432/videprinter?sslmode=disable",
	}
}
