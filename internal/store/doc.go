// Package store defines the persistence interfaces for users, tasks and task
// permissions, the shared store errors, and transaction helpers. Concrete
// implementations live in internal/platform/postgres.
package store
