package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

const serviceName = "placement-backend"

// Setup builds the process logger and installs it as the zerolog/log package logger.
// format is "pretty" for console output during development, anything else means JSON.
// An unknown level falls back to info.
func Setup(level, format string) zerolog.Logger {
	return SetupWriter(os.Stdout, level, format)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(out io.Writer, level, format string) zerolog.Logger {
	if format == "pretty" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	l := zerolog.New(out).
		With().
		Timestamp().
		Str("service", serviceName).
		Caller().
		Logger()
	zlog.Logger = l

	if err != nil {
		l.Warn().Str("requested", level).Msg("unknown log level, using info")
	}
	return l
}

// Component tags a child logger with the subsystem that owns it.
func Component(parent zerolog.Logger, name string) zerolog.Logger {
	return parent.With().Str("component", name).Logger()
}
