package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Timeline   TimelineConfig   `yaml:"timeline"`
	Refresher  RefresherConfig  `yaml:"refresher"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds the connection details for the change-notification
// channel.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// TimelineConfig holds the relative message offsets used by the agenda
// generator. Offsets are expressed in real-time minutes; accelerated mode
// divides every offset by AcceleratedFactor.
type TimelineConfig struct {
	SpeakerAlertLeadMinutes int     `yaml:"speaker_alert_lead_minutes"`
	PCRDelayMinutes         int     `yaml:"pcr_delay_minutes"`
	SponsorRecDelayMinutes  int     `yaml:"sponsor_rec_delay_minutes"`
	PeerMatchLeadMinutes    int     `yaml:"peer_match_lead_minutes"`
	LookaheadMinutes        int     `yaml:"lookahead_minutes"`
	AcceleratedFactor       float64 `yaml:"accelerated_factor"`
}

// RefresherConfig holds the view-refresher tuning knobs.
type RefresherConfig struct {
	Enabled              bool          `yaml:"enabled"`
	SweepIntervalSeconds int           `yaml:"sweep_interval_seconds"`
	SweepInterval        time.Duration `yaml:"-"` // Ignored by YAML parser
	MaxRetries           int           `yaml:"max_retries"`
	RetryBackoffSeconds  int           `yaml:"retry_backoff_seconds"`
	RetryBackoff         time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for admin web push alerts.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "tpx:schedule_events"
	}

	if cfg.Timeline.SpeakerAlertLeadMinutes <= 0 {
		cfg.Timeline.SpeakerAlertLeadMinutes = 15
	}
	if cfg.Timeline.PCRDelayMinutes <= 0 {
		cfg.Timeline.PCRDelayMinutes = 7
	}
	if cfg.Timeline.SponsorRecDelayMinutes <= 0 {
		cfg.Timeline.SponsorRecDelayMinutes = 2
	}
	if cfg.Timeline.PeerMatchLeadMinutes <= 0 {
		cfg.Timeline.PeerMatchLeadMinutes = 30
	}
	if cfg.Timeline.LookaheadMinutes <= 0 {
		cfg.Timeline.LookaheadMinutes = 60
	}
	if cfg.Timeline.AcceleratedFactor <= 1 {
		cfg.Timeline.AcceleratedFactor = 10
	}

	if cfg.Refresher.SweepIntervalSeconds <= 0 {
		cfg.Refresher.SweepIntervalSeconds = 60
	}
	cfg.Refresher.SweepInterval = time.Duration(cfg.Refresher.SweepIntervalSeconds) * time.Second
	if cfg.Refresher.MaxRetries <= 0 {
		cfg.Refresher.MaxRetries = 3
	}
	if cfg.Refresher.RetryBackoffSeconds <= 0 {
		cfg.Refresher.RetryBackoffSeconds = 2
	}
	cfg.Refresher.RetryBackoff = time.Duration(cfg.Refresher.RetryBackoffSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
