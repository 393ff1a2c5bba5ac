// Package config loads runtime settings for the Vinylvault CLI. Sources are
// overlaid in a fixed order, later ones winning: built-in defaults, a JSON
// file, environment variables (including a local .env file), command-line
// flags.
package config

import "time"

// Config holds runtime settings for the Vinylvault CLI.
//
// Fields:
//   - DatabasePath: location of the local vault database file.
//   - LogLevel: debug | info | warn | error.
//   - SessionTTL: how long a session stays valid after its last activity.
type Config struct {
	DatabasePath string
	LogLevel     string
	SessionTTL   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "vinylvault.db"
	c.LogLevel = "info"
	c.SessionTTL = 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
