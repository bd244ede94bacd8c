package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend (default from Config)
//	-t int      request timeout in seconds (default from Config)
//	-d string   SQLite database path (default from Config)
//	-r float    requests per second, 0 disables limiting (default from Config)
//	-l string   log level (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.Float64Var(&cfg.RequestsPerSecond, "r", cfg.RequestsPerSecond, "client-side request rate limit")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only overrides when given, so sub-second JSON timeouts survive.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
