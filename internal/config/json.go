package config

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// duration lets JSON specify intervals either as strings like "24h" or as
// integer nanoseconds.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	DatabasePath string   `json:"database_path"`
	LogLevel     string   `json:"log_level"`
	SessionTTL   duration `json:"session_ttl"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flag. If no file is named, nothing happens. Read or unmarshal
// errors panic: LoadConfig runs before any user data is touched.
func parseJson(cfg *Config) {
	path := jsonConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.SessionTTL.Duration != 0 {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
}

// jsonConfigPath extracts the value of -c/-config from args without
// disturbing flags owned by other overlay stages.
func jsonConfigPath(args []string) string {
	for i, a := range args {
		if a == "-c" || a == "-config" || a == "--config" {
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
	}
	return ""
}
