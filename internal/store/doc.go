// Package store defines the persistence interfaces the engine depends
// on, together with the sentinel errors their implementations return.
// Concrete implementations live under internal/platform (postgres for
// production, memory for tests and local development).
package store
