// Package contracts holds the interfaces that agroguard components depend on.
// Concrete drivers live under contrib/ and are wired together in cmd/agroguard.
package contracts

import "context"

// HealthChecker is implemented by every driver that holds a remote connection.
// The status command pings each configured checker.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}
