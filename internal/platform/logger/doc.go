// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Request-scoped loggers travel through
// context.Context via WithLogger and FromContext so that handlers, services
// and stores emit records carrying the same trace_id.
package logger
