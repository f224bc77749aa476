package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger every component takes a copy of.
func NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
