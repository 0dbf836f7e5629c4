// Package logger provides structured logging for the application.
//
// It configures log/slog with either a JSON handler or a tint text handler
// and carries request-scoped loggers through context.Context.
package logger
