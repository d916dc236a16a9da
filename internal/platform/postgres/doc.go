// Package postgres provides PostgreSQL-backed implementations of the
// persistence interfaces defined in internal/store and internal/task.
// It handles query execution, JSONB mapping for event and vector
// payloads, and translation of driver errors into store sentinels.
package postgres
