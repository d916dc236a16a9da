// Package logger configures structured logging for the service.
//
// It builds a JSON log/slog handler from configuration and carries
// request-scoped loggers through context so handlers, services, and
// stores share correlation fields.
package logger
