package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers understood by the server.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port         string   `yaml:"port"`
		AllowOrigins []string `yaml:"allow_origins"`
		ShutdownWait string   `yaml:"shutdown_wait"`
	} `yaml:"server"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`
	Mongo struct {
		URI            string `yaml:"uri"`
		Database       string `yaml:"database"`
		ConnectTimeout string `yaml:"connect_timeout"`
	} `yaml:"mongo"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	RabbitMQ struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"rabbitmq"`
	Quiz struct {
		QuestionLimit int    `yaml:"question_limit"`
		CacheTTL      string `yaml:"cache_ttl"`
		SessionTTL    string `yaml:"session_ttl"`
	} `yaml:"quiz"`
	Auth struct {
		OTPTTL         string `yaml:"otp_ttl"`
		ResendCooldown string `yaml:"resend_cooldown"`
		MaxAttempts    int    `yaml:"max_attempts"`
	} `yaml:"auth"`
}

// Load reads YAML config from path and fills unset values with defaults.
// Values may reference environment variables as ${NAME}.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "development"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "matha"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "matha-events"
	}
	if c.Quiz.QuestionLimit <= 0 {
		c.Quiz.QuestionLimit = 10
	}
	if c.Auth.MaxAttempts <= 0 {
		c.Auth.MaxAttempts = 5
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
