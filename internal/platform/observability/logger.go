package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a leveled zerolog.Logger: human-readable console output
// for local development (appEnv == "local"), structured JSON otherwise.
// Never returns a package-global — callers thread the result through
// constructors explicitly.
func NewLogger(appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var base zerolog.Logger
	if appEnv == "local" {
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		base = zerolog.New(os.Stderr)
	}

	return base.Level(lvl).With().Timestamp().Logger()
}
