// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init initializes the global zerolog logger with the given
// configuration. Console output goes through ConsoleWriter; file
// output is JSON. Logs default to stderr so detection results on
// stdout stay clean.
func Init(verbose bool, logfile string) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	var writer io.Writer
	isConsole := false
	switch strings.ToLower(logfile) {
	case "stderr", "":
		writer = os.Stderr
		isConsole = true
	case "stdout":
		writer = os.Stdout
		isConsole = true
	default:
		f, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		writer = f
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.TimeOnly

	var logger zerolog.Logger
	if isConsole {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.TimeOnly,
		}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(writer).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &logger
	zlog.Logger = logger

	return nil
}
