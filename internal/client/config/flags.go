package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST API base URL
//	-t string   bearer token
//	-k string   Gemini API key
//	-m string   Gemini model
//	-i int      reveal interval in milliseconds
//	-f string   local database file
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-k", "-m", "-i", "-f", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "REST API base URL")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "bearer token")
	fs.StringVar(&cfg.GeminiAPIKey, "k", cfg.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&cfg.GeminiModel, "m", cfg.GeminiModel, "Gemini model")
	revealInterval := fs.Int("i", int(cfg.RevealInterval.Milliseconds()), "reveal interval (in milliseconds)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RevealInterval = time.Duration(*revealInterval) * time.Millisecond
}
