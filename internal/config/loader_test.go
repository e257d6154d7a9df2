package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goalfeed/videprinter/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":3002")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 30_000)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 1000)
				convey.So(cfg.ReplaySize, convey.ShouldEqual, 500)
				convey.So(cfg.Provider, convey.ShouldEqual, config.ProviderMock)
				convey.So(cfg.QuietHoursStart, convey.ShouldEqual, -1)
				convey.So(cfg.DailyRequestCap, convey.ShouldEqual, 1000)
				convey.So(cfg.Competitions, convey.ShouldResemble, []string{"77", "82", "83", "152", "150"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GOALFEED_ADDR", ":8080")
			_ = os.Setenv("GOALFEED_POLL_INTERVAL_MS", "5000")
			_ = os.Setenv("GOALFEED_DEDUPE_SIZE", "250")
			_ = os.Setenv("GOALFEED_QUIET_HOURS_START", "23")
			_ = os.Setenv("GOALFEED_QUIET_HOURS_END", "7")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 5000)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 250)
				convey.So(cfg.QuietHoursStart, convey.ShouldEqual, 23)
				convey.So(cfg.QuietHoursEnd, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":9090"
poll_interval_ms: 10000
provider: "live-score"
provider_key: "k"
provider_secret: "s"
replay_size: 50
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("GOALFEED_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should apply file values over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PollIntervalMS, convey.ShouldEqual, 10000)
				convey.So(cfg.Provider, convey.ShouldEqual, config.ProviderLiveScore)
				convey.So(cfg.ReplaySize, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			defer clearConfigEnvVars()

			convey.Convey("Then an unknown provider should be rejected", func() {
				_ = os.Setenv("GOALFEED_PROVIDER", "carrier-pigeon")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("And quiet hours above 23 should be rejected", func() {
				_ = os.Setenv("GOALFEED_QUIET_HOURS_START", "24")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("And enabled persistence without a database URL should be rejected", func() {
				_ = os.Setenv("GOALFEED_PERSISTENCE_ENABLED", "true")
				_ = os.Setenv("GOALFEED_DATABASE_URL", "")
				_, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars(extra ...string) {
	keys := []string{
		"GOALFEED_CONFIG",
		"GOALFEED_ADDR",
		"GOALFEED_POLL_INTERVAL_MS",
		"GOALFEED_DEDUPE_SIZE",
		"GOALFEED_QUIET_HOURS_START",
		"GOALFEED_QUIET_HOURS_END",
		"GOALFEED_PROVIDER",
		"GOALFEED_PERSISTENCE_ENABLED",
		"GOALFEED_DATABASE_URL",
	}
	keys = append(keys, extra...)
	for _, k := range keys {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
