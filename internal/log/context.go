package log

import (
	"context"
	"log/slog"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// WithLogger stores logger in ctx
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from ctx, falling back to the default logger
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides domain-specific structured logging methods
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogEntryRecorded logs a successfully stored toll entry
func (sl *StructuredLogger) LogEntryRecorded(ctx context.Context, entryID, tripID, roadID, category string, quantity int, amount string, priced bool) {
	fields := NewFields().
		WithEntry(entryID, tripID, roadID, category, quantity, amount).
		WithOperation(OpRecord).
		ToSlice()

	fields = append(fields, FieldPriced, priced)

	sl.logger.InfoContext(ctx, "Toll entry recorded", fields...)
}

// LogError logs a failed operation. The component comes from the wrapped logger.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation, errorType string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithErrorType(errorType)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}

// Default returns a logger for component backed by the slog default handler
func Default(component string) *Logger {
	return &Logger{
		Logger:    slog.Default(),
		component: component,
	}
}
