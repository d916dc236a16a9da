// Package curriculum holds the static per-language lesson catalogs and
// the mastery resolution logic derived from them. The registry is
// populated once during application startup and is treated as
// read-only by every other component.
package curriculum
