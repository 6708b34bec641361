// Package logger provides structured logging functionality for the application.
//
// It builds a JSON log/slog logger from configuration and carries
// request-scoped loggers through context.Context so that stores and services
// log with the trace ID of the request that called them.
package logger
