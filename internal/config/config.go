// Package config defines touchline's process configuration and how it is
// layered from defaults, an optional YAML file and TOUCHLINE_* env vars.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr   string `koanf:"addr"`
	DBPath string `koanf:"db_path"`

	// Timezone is the academy's reference zone. Local dates and the
	// notification windows are computed in it.
	Timezone string `koanf:"timezone"`

	// APIToken guards the staff API. Empty disables the check.
	APIToken string `koanf:"api_token"`
	// CronSecret guards the scheduled notification endpoint. Empty rejects
	// every call.
	CronSecret string `koanf:"cron_secret"`

	VAPIDPublicKey  string `koanf:"vapid_public_key"`
	VAPIDPrivateKey string `koanf:"vapid_private_key"`
	VAPIDSubject    string `koanf:"vapid_subject"`
	// PushTTL is how long, in seconds, the push service keeps undelivered messages.
	PushTTL int `koanf:"push_ttl"`
	// PushConcurrency bounds parallel deliveries within one pass.
	PushConcurrency      int  `koanf:"push_concurrency"`
	PushLogOnlyDelivered bool `koanf:"push_log_only_delivered"`
	LogRetentionDays     int  `koanf:"log_retention_days"`

	// SchedulerEnabled runs notification passes in-process instead of
	// waiting for the cron endpoint.
	SchedulerEnabled  bool          `koanf:"scheduler_enabled"`
	SchedulerInterval time.Duration `koanf:"scheduler_interval"`

	// CronRateLimit is the number of cron calls allowed per IP per minute.
	CronRateLimit int `koanf:"cron_rate_limit"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8080",
		DBPath:            "touchline.db",
		Timezone:          "Europe/Berlin",
		VAPIDSubject:      "mailto:noreply@touchline.app",
		PushTTL:           86400,
		PushConcurrency:   8,
		LogRetentionDays:  7,
		SchedulerInterval: time.Hour,
		CronRateLimit:     10,
	}
}
