package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukerupert/touchline/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"TOUCHLINE_CONFIG", "TOUCHLINE_ADDR", "TOUCHLINE_TIMEZONE", "TOUCHLINE_CRON_SECRET",
	"TOUCHLINE_PUSH_CONCURRENCY", "TOUCHLINE_SCHEDULER_ENABLED", "TOUCHLINE_SCHEDULER_INTERVAL",
	"TOUCHLINE_PUSH_LOG_ONLY_DELIVERED", "TOUCHLINE_VAPID_PUBLIC_KEY",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Timezone, convey.ShouldEqual, "Europe/Berlin")
				convey.So(cfg.PushConcurrency, convey.ShouldEqual, 8)
				convey.So(cfg.LogRetentionDays, convey.ShouldEqual, 7)
				convey.So(cfg.SchedulerInterval, convey.ShouldEqual, time.Hour)
				convey.So(cfg.SchedulerEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TOUCHLINE_ADDR", ":9000")
			_ = os.Setenv("TOUCHLINE_CRON_SECRET", "s3cret")
			_ = os.Setenv("TOUCHLINE_PUSH_CONCURRENCY", "2")
			_ = os.Setenv("TOUCHLINE_SCHEDULER_ENABLED", "true")
			_ = os.Setenv("TOUCHLINE_SCHEDULER_INTERVAL", "15m")
			_ = os.Setenv("TOUCHLINE_PUSH_LOG_ONLY_DELIVERED", "true")

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.CronSecret, convey.ShouldEqual, "s3cret")
				convey.So(cfg.PushConcurrency, convey.ShouldEqual, 2)
				convey.So(cfg.SchedulerEnabled, convey.ShouldBeTrue)
				convey.So(cfg.SchedulerInterval, convey.ShouldEqual, 15*time.Minute)
				convey.So(cfg.PushLogOnlyDelivered, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := filepath.Join(t.TempDir(), "touchline.yaml")
			yamlContent := `
addr: ":7070"
timezone: "Europe/London"
log_retention_days: 14
`
			convey.So(os.WriteFile(path, []byte(yamlContent), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("TOUCHLINE_CONFIG", path)

			convey.Convey("Then file values apply and env still wins", func() {
				_ = os.Setenv("TOUCHLINE_ADDR", ":6060")
				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.Timezone, convey.ShouldEqual, "Europe/London")
				convey.So(cfg.LogRetentionDays, convey.ShouldEqual, 14)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv("TOUCHLINE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
			_, err := config.Load()

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			_ = os.Setenv("TOUCHLINE_TIMEZONE", "Mars/Olympus")
			_, err := config.Load()

			convey.Convey("Then the config is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When only one VAPID key is set", func() {
			_ = os.Setenv("TOUCHLINE_VAPID_PUBLIC_KEY", "abc")
			_, err := config.Load()

			convey.Convey("Then the config is rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given default config", t, func() {
		cfg := config.New()

		convey.Convey("It is valid", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("An empty addr is rejected", func() {
			cfg.Addr = ""
			convey.So(errors.Is(cfg.Validate(), config.ErrNoAddr), convey.ShouldBeTrue)
		})

		convey.Convey("A zero concurrency is rejected", func() {
			cfg.PushConcurrency = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
