// Package gemini provides an implementation of the embedding.Embedder
// interface backed by Google's Gemini embedding API.
//
// This package is an infrastructure adapter: it translates between the
// application's embedding contract and the genai client library without
// exposing Google API details to the rest of the application. Transient
// API failures are retried with exponential backoff before being
// reported as embedding.ErrTransientFailure.
package gemini
