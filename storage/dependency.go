// Package storage provides clients for the service's external dependencies:
// the Postgres datastore and the Redis cache store.
package storage

import "context"

// Dependency is an external service the API can probe for readiness.
type Dependency interface {
	// Name identifies the dependency in logs, metrics and health responses
	Name() string
	// Addr is the host:port being dialed
	Addr() string
	Ping(ctx context.Context) error
	Close() error
}
