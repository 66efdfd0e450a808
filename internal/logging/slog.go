package logging

import (
	"log/slog"
	"os"

	"github.com/arloliu/rotacl/types"
)

// componentKey tags every record written through a SlogLogger.
const componentKey = "component"

// SlogLogger adapts a *slog.Logger to types.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

var _ types.Logger = (*SlogLogger)(nil)

// NewSlog wraps logger, tagging every record with component.
//
// Parameters:
//   - logger: Destination logger; nil uses slog.Default()
//   - component: Value of the "component" attribute; empty adds none
//
// Returns:
//   - *SlogLogger: Logger for rotacl components
//
// Example:
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	logger := logging.NewSlog(slog.New(handler), "rotacl")
//	logger.Info("rotation pool loaded", "rotations", 12)
func NewSlog(logger *slog.Logger, component string) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	if component != "" {
		logger = logger.With(componentKey, component)
	}

	return &SlogLogger{logger: logger}
}

// With returns a logger that adds keysAndValues to every record,
// e.g. the instance an allocation runs for.
func (l *SlogLogger) With(keysAndValues ...any) *SlogLogger {
	return &SlogLogger{logger: l.logger.With(keysAndValues...)}
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *SlogLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *SlogLogger) Warn(msg string, keysAndValues ...any) {
	l.logger.Warn(msg, keysAndValues...)
}

func (l *SlogLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}

// Fatal logs at error level, slog having no fatal level, and exits with status 1.
func (l *SlogLogger) Fatal(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
	os.Exit(1) //nolint:revive // Fatal terminates by contract
}
