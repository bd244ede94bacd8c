package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/moodjournal/internal/flagx"
	"github.com/dmitrijs2005/moodjournal/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// tell "absent" apart from the zero value so a partial file only overrides
// what it names.
type JsonConfig struct {
	ServerBaseURL     *string         `json:"server_base_url"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	DatabasePath      *string         `json:"database_path"`
	RequestsPerSecond *float64        `json:"requests_per_second"`
	LogLevel          *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file named by
// -c or -config. Without either flag it does nothing. Read and unmarshal
// errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *jc.RequestsPerSecond
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
