// Package metrics exposes Prometheus metrics for the HTTP surface and for
// authorization decisions. Metrics live on a private registry so tests can
// build independent instances.
package metrics
