// Package config loads runtime configuration for the mood journal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend, e.g. http://127.0.0.1:8000
//	-t int      request timeout (seconds)
//	-d string   path of the local SQLite database
//	-r float    client-side requests per second (0 = unlimited)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so it can be either a
// string like "10s" or integer nanoseconds. Keys that are absent keep their
// earlier value:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "request_timeout": "10s",
//	  "database_path": "moodjournal.db",
//	  "requests_per_second": 5,
//	  "log_level": "info"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
