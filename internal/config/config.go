package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	EmailSvc  EmailSvcConfig  `yaml:"email_service"`
	Redis     RedisConfig     `yaml:"redis"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// EmailSvcConfig holds upstream email-service API configuration.
// Domain is the upstream host (e.g. "app.example.com"); a domain
// containing "fixture" short-circuits every read to fixture data.
// ProxyBaseURL, when set, routes calls through a public CORS proxy that
// wraps the payload in a {contents: "..."} envelope.
type EmailSvcConfig struct {
	Domain         string `yaml:"domain"`
	ProxyBaseURL   string `yaml:"proxy_base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	EmailListLimit int    `yaml:"email_list_limit"`
}

// Timeout returns the configured timeout as a duration
func (c EmailSvcConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds the optional shared profile-cache backend.
// When Addr is empty the in-process cache is used instead.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

// TTL returns the cache entry TTL as a duration
func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// DashboardConfig holds presentation defaults for the dashboard API
type DashboardConfig struct {
	EmailPageSize     int  `yaml:"email_page_size"`
	RecipientPageSize int  `yaml:"recipient_page_size"`
	EnableCSVDownload bool `yaml:"enable_csv_download"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.EmailSvc.TimeoutSeconds == 0 {
		cfg.EmailSvc.TimeoutSeconds = 30
	}
	if cfg.EmailSvc.EmailListLimit == 0 {
		cfg.EmailSvc.EmailListLimit = 100
	}
	if cfg.Redis.TTLMinutes == 0 {
		cfg.Redis.TTLMinutes = 60
	}
	if cfg.Dashboard.EmailPageSize == 0 {
		cfg.Dashboard.EmailPageSize = 5
	}
	if cfg.Dashboard.RecipientPageSize == 0 {
		cfg.Dashboard.RecipientPageSize = 5
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so settings can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if domain := os.Getenv("EMAILSVC_DOMAIN"); domain != "" {
		cfg.EmailSvc.Domain = domain
	}
	if proxy := os.Getenv("EMAILSVC_PROXY_BASE_URL"); proxy != "" {
		cfg.EmailSvc.ProxyBaseURL = proxy
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	return cfg, nil
}
