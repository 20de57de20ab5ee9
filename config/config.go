package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HttpPort uint16 `envconfig:"DENGUEGUARD_HTTP_SERVER_PORT" default:"8080" required:"true"`

	ReminderInterval      time.Duration `envconfig:"DENGUEGUARD_REMINDER_INTERVAL" default:"60s"`
	CleanupInterval       time.Duration `envconfig:"DENGUEGUARD_CLEANUP_INTERVAL" default:"1h"`
	NotificationRetention time.Duration `envconfig:"DENGUEGUARD_NOTIFICATION_RETENTION" default:"24h"`
	AttentionRetention    time.Duration `envconfig:"DENGUEGUARD_ATTENTION_RETENTION" default:"96h"`

	PatientCacheSize       int           `envconfig:"DENGUEGUARD_PATIENT_CACHE_SIZE" default:"1000"`
	PatientCacheExpiration time.Duration `envconfig:"DENGUEGUARD_PATIENT_CACHE_EXPIRATION" default:"30s"`

	// Events are only fanned out through redis when the url is set
	RedisURL     string `envconfig:"DENGUEGUARD_REDIS_URL"`
	RedisChannel string `envconfig:"DENGUEGUARD_REDIS_CHANNEL" default:"dengueguard:events"`
}

func New() *Config {
	return &Config{}
}

func NewConfig() (*Config, error) {
	cfg := New()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) LoadFromEnv() error {
	return envconfig.Process("", c)
}

// Validate rejects durations the background tasks can't run with
func (c *Config) Validate() error {
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"DENGUEGUARD_REMINDER_INTERVAL", c.ReminderInterval},
		{"DENGUEGUARD_CLEANUP_INTERVAL", c.CleanupInterval},
		{"DENGUEGUARD_NOTIFICATION_RETENTION", c.NotificationRetention},
		{"DENGUEGUARD_ATTENTION_RETENTION", c.AttentionRetention},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", d.name, d.value)
		}
	}
	return nil
}

func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%d", c.HttpPort)
}
