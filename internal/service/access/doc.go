// Package access implements task authorization.
//
// Engine makes the decisions. Read and update are data driven: they are
// allowed exactly when the actor's permission row carries the matching flag.
// Ownership matters only at creation, when the owner receives a full grant
// in the same transaction as the task.
//
// Service is the entry point for request handlers. It resolves the actor from
// a token and runs each task use case through Engine before touching the
// store.
package access
