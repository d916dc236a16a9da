// Package api contains the HTTP handlers for the learner memory and
// curriculum context engine: context generation for new tutoring
// sessions and transcript processing for finished ones. Handlers
// translate between the JSON surface and the service layer, and map
// service errors to HTTP status codes without leaking internals.
package api
