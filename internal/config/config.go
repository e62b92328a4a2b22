// Package config provides YAML-based configuration loading for bedboard.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database backends.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config is the top-level bedboard configuration, loaded from bedboard.yaml.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Auth         AuthConfig         `yaml:"auth"`
	Wards        []WardConfig       `yaml:"wards"`
	Housekeeping HousekeepingConfig `yaml:"housekeeping"`
	Alerts       AlertsConfig       `yaml:"alerts"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects and configures the durability backend.
type DatabaseConfig struct {
	Backend  string `yaml:"backend"` // sqlite (default) or mysql
	Path     string `yaml:"path"`    // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AuthConfig holds the staff registry and token settings. The JWT secret
// is normally supplied via the BEDBOARD_JWT_SECRET environment variable
// (a .env file is honored) rather than the YAML file.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTLHours int           `yaml:"token_ttl_hours"`
	Staff         []StaffConfig `yaml:"staff"`
}

// StaffConfig is one staff login.
type StaffConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
}

// WardConfig describes one ward's seeded bed complement.
type WardConfig struct {
	Name        string `yaml:"name"`
	Beds        int    `yaml:"beds"`
	BedType     string `yaml:"bed_type"`
	MaxDistance int    `yaml:"max_distance"` // seeded distances are 1..MaxDistance
}

// HousekeepingConfig controls the cleaning-bed turnover sweep.
type HousekeepingConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Schedule        string `yaml:"schedule"` // 5-field cron expression
	TurnoverMinutes int    `yaml:"turnover_minutes"`
}

// AlertsConfig wires staff alerting to a chat platform. Tokens come from
// SLACK_BOT_TOKEN / DISCORD_BOT_TOKEN in the environment.
type AlertsConfig struct {
	Platform     string `yaml:"platform"` // "", "slack" or "discord"
	Channel      string `yaml:"channel"`
	SlackToken   string `yaml:"-"`
	DiscordToken string `yaml:"-"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string        `yaml:"level"`  // debug, info, warn, error
	Format string        `yaml:"format"` // json or console
	File   LogFileConfig `yaml:"file"`
}

// LogFileConfig enables an optional rotating log file.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file in the working directory is loaded first so secrets can be
// kept out of the YAML.
func Load(path string) (*Config, error) {
	// Best-effort: a missing .env is fine.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv pulls secrets from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("BEDBOARD_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	c.Alerts.SlackToken = os.Getenv("SLACK_BOT_TOKEN")
	c.Alerts.DiscordToken = os.Getenv("DISCORD_BOT_TOKEN")
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Database.Backend == "" {
		c.Database.Backend = BackendSQLite
	}
	if c.Database.Path == "" {
		c.Database.Path = "bedboard.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "bedboard"
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 8
	}
	if len(c.Wards) == 0 {
		c.Wards = DefaultWards()
	}
	for i := range c.Wards {
		if c.Wards[i].BedType == "" {
			if c.Wards[i].Name == "ICU" {
				c.Wards[i].BedType = "Critical"
			} else {
				c.Wards[i].BedType = "Standard"
			}
		}
		if c.Wards[i].MaxDistance == 0 {
			c.Wards[i].MaxDistance = 100
		}
	}
	if c.Housekeeping.Schedule == "" {
		c.Housekeeping.Schedule = "*/5 * * * *"
	}
	if c.Housekeeping.TurnoverMinutes == 0 {
		c.Housekeeping.TurnoverMinutes = 30
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// DefaultWards is the stock 50-bed complement used when no wards are
// configured: 10 ICU close to the station, then Cardiology, General and
// Pediatrics.
func DefaultWards() []WardConfig {
	return []WardConfig{
		{Name: "ICU", Beds: 10, BedType: "Critical", MaxDistance: 10},
		{Name: "Cardiology", Beds: 10, BedType: "Standard", MaxDistance: 100},
		{Name: "General", Beds: 20, BedType: "Standard", MaxDistance: 100},
		{Name: "Pediatrics", Beds: 10, BedType: "Standard", MaxDistance: 100},
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Database.Backend != BackendSQLite && c.Database.Backend != BackendMySQL {
		errs = append(errs, fmt.Sprintf("database.backend %q must be sqlite or mysql", c.Database.Backend))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, "auth.jwt_secret is required (or set BEDBOARD_JWT_SECRET)")
	}
	seen := map[string]bool{}
	for i, s := range c.Auth.Staff {
		if s.Username == "" {
			errs = append(errs, fmt.Sprintf("auth.staff[%d].username is required", i))
			continue
		}
		if seen[s.Username] {
			errs = append(errs, fmt.Sprintf("auth.staff[%d].username %q is duplicated", i, s.Username))
		}
		seen[s.Username] = true
		if s.Password == "" {
			errs = append(errs, fmt.Sprintf("auth.staff[%d].password is required", i))
		}
	}
	for i, w := range c.Wards {
		if w.Name == "" {
			errs = append(errs, fmt.Sprintf("wards[%d].name is required", i))
		}
		if w.Beds < 0 {
			errs = append(errs, fmt.Sprintf("wards[%d].beds must not be negative", i))
		}
	}
	switch c.Alerts.Platform {
	case "", "slack", "discord":
	default:
		errs = append(errs, fmt.Sprintf("alerts.platform %q must be slack or discord", c.Alerts.Platform))
	}
	if c.Alerts.Platform != "" && c.Alerts.Channel == "" {
		errs = append(errs, "alerts.channel is required when alerts.platform is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
