package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	assert.Equal(t, "vinylvault.db", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("VINYLVAULT_DATABASE_PATH", "/tmp/test.db")
	t.Setenv("VINYLVAULT_LOG_LEVEL", "debug")
	t.Setenv("VINYLVAULT_SESSION_TTL", "2h")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestParseEnv_InvalidDurationIgnored(t *testing.T) {
	t.Setenv("VINYLVAULT_SESSION_TTL", "not-a-duration")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestJsonConfigPath(t *testing.T) {
	assert.Equal(t, "x.json", jsonConfigPath([]string{"-c", "x.json"}))
	assert.Equal(t, "x.json", jsonConfigPath([]string{"-l", "debug", "-config", "x.json"}))
	assert.Equal(t, "", jsonConfigPath([]string{"-l", "debug"}))
	assert.Equal(t, "", jsonConfigPath([]string{"-c"}))
}

func TestFilterArgs(t *testing.T) {
	got := filterArgs([]string{"-c", "x.json", "-d", "/tmp/a.db", "-unknown", "v", "-l", "warn"}, []string{"-d", "-l"})
	assert.Equal(t, []string{"-d", "/tmp/a.db", "-l", "warn"}, got)
}
