// Package events decouples session processing from background work.
//
// When a transcript finishes processing, the session service emits a
// TaskRequestEvent instead of enqueueing the embedding task directly.
// Handlers registered on an EventEmitter translate those events into
// tasks, so the service layer never imports the task runner.
//
// The primary components are:
// - TaskRequestEvent: a request to create a background task
// - EventHandler: receives emitted events
// - EventEmitter: fans events out to registered handlers
package events
