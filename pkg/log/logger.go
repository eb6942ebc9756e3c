// Package log configures structured logging for the Stabl library.
//
// The package is built on log/slog. Batch runs log JSON; interactive runs can
// opt into a tint-backed console handler. Both are wrapped by ErrFmtHandler,
// which lifts cockroachdb/errors stack traces into a dedicated attribute.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/rs/zerolog"

	stablerrors "github.com/joshuagi/Stabl/pkg/errors"
)

const (
	// ErrAttrKey is the attribute key carrying the error value.
	ErrAttrKey = "error"
	// StacktraceAttrKey is the attribute key carrying the extracted stack
	// trace.
	StacktraceAttrKey = "stacktrace"
)

// SetupLogger installs a JSON slog logger as the process default.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// SetupConsoleLogger installs a human-readable tint logger, for notebooks and
// interactive runs.
func SetupConsoleLogger(loglevel string) {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      ToLogLevel(loglevel),
		TimeFormat: time.Kitchen,
	})
	slog.SetDefault(slog.New(WrapByErrFmtHandler(handler)))
}

// ToLogLevel converts a level name to a slog.Level.
func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

// InstallZerologWarnSink routes library warnings (convergence failures,
// unreachable FDR targets) through a zerolog logger writing to w. Typed
// warnings implementing zerolog.LogObjectMarshaler are emitted as structured
// objects.
func InstallZerologWarnSink(w io.Writer) {
	logger := zerolog.New(w).With().Timestamp().Logger()
	stablerrors.SetZerologWarnFunc(func(warning error) {
		event := logger.Warn()
		if marshaler, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event.Object("warning", marshaler)
		}
		event.Msg(warning.Error())
	})
}
