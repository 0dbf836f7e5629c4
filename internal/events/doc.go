// Package events carries audit events for task and permission changes.
//
// The access service emits an AccessEvent after each successful mutation.
// Handlers registered on an emitter receive every event; the default
// LoggingHandler writes them to the structured log.
package events
