package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration (serve mode)
	Server ServerConfig `env:",prefix=SERVER_"`

	// Sweep configuration
	Sweep SweepConfig `env:",prefix=SWEEP_"`

	// GitHub publisher configuration
	GitHub GitHubConfig `env:",prefix=GITHUB_"`

	// Run-history database configuration
	History HistoryConfig `env:",prefix=DB_"`

	// Application configuration
	App AppConfig `env:",prefix=APP_"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string `env:"PORT,default=8080"`
	Host         string `env:"HOST,default=0.0.0.0"`
	ReadTimeout  int    `env:"READ_TIMEOUT,default=30"`  // seconds
	WriteTimeout int    `env:"WRITE_TIMEOUT,default=30"` // seconds
}

// SweepConfig holds the codes file location, the civil timezone used to
// interpret naive expiry strings, and the serve-mode cron schedule.
type SweepConfig struct {
	File     string `env:"FILE,default=data/shiftcodes.json"`
	Timezone string `env:"TIMEZONE,default=America/Chicago"`
	// Six-field cron expression; default fires at the top of every hour.
	Schedule string `env:"SCHEDULE,default=0 0 * * * *"`
}

// GitHubConfig holds the optional remote-publish target. Publishing is
// skipped unless user, repo, and token are all set.
type GitHubConfig struct {
	User   string `env:"USER"`
	Repo   string `env:"REPO"`
	Token  string `env:"TOKEN"`
	Branch string `env:"BRANCH"` // empty: repository default branch
	// API requests per second during a publish
	RateLimit float64 `env:"RATE_LIMIT,default=2"`
}

// HistoryConfig holds the optional PostgreSQL sink for sweep-run history
type HistoryConfig struct {
	Enabled  bool   `env:"ENABLED,default=false"`
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD,default=postgres"`
	Name     string `env:"NAME,default=shiftsweep"`
	SSLMode  string `env:"SSL_MODE,default=disable"`
	MaxConns int    `env:"MAX_CONNS,default=5"`
	MinConns int    `env:"MIN_CONNS,default=1"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// Enabled reports whether the publisher has complete credentials
func (c *GitHubConfig) Enabled() bool {
	return c.User != "" && c.Repo != "" && c.Token != ""
}

// GetDatabaseURL returns the PostgreSQL connection URL
func (c *HistoryConfig) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if running in development environment
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
