// Package main provides the tzlocal command entry point.
package main

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // Embed timezone database for hosts without a zoneinfo tree

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"github.com/serialbandicoot/tzlocal"
	"github.com/serialbandicoot/tzlocal/internal/logger"
)

var (
	app     = kingpin.New("tzlocal", "Detect the system's configured local timezone")
	root    = app.Flag("root", "Search root for configuration files").Default(tzlocal.DefaultRoot).Envar("TZLOCAL_ROOT").String()
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Envar("VERBOSE").Bool()
	logfile = app.Flag("logfile", "Path to log file (default: stderr)").Envar("LOGFILE").String()
)

func init() {
	// detect command (default) - no need to store the command
	app.Command("detect", "Print the detected timezone (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	if err := logger.Init(*verbose, *logfile); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg := config{Root: *root}
	if err := cfg.Validate(); err != nil {
		zlog.Error().Msgf("Config validation failed: %v", err)
		os.Exit(1)
	}

	zlog.Debug().Msgf("config.root:[%s]", cfg.Root)

	loc, err := tzlocal.NewCache(cfg.Root).Get()
	if err != nil {
		zlog.Error().Msgf("Failed to detect timezone: %v", err)
		os.Exit(1)
	}

	_, offset := time.Now().In(loc).Zone()
	fmt.Printf("%s (UTC%s)\n", loc, formatOffset(offset))
}

// formatOffset renders a UTC offset in seconds as +HH:MM.
func formatOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, seconds%3600/60)
}
