// Package logging configures the global zerolog logger for the service.
// Release builds emit JSON; anything else gets the console writer.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup initializes the global logger. Call once from main before any
// other package logs.
func Setup(service string, release bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if release {
		log.Logger = zerolog.New(os.Stdout).With().
			Timestamp().
			Str("service", service).
			Logger()
		return
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().
		Timestamp().
		Str("service", service).
		Logger()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}
