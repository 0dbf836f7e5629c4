// Package domain contains the core entities of the task service: users,
// tasks and the per-user permissions that govern access to tasks. It is
// independent of storage and transport.
package domain
