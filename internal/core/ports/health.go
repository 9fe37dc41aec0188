package ports

import "context"

// HealthChecker probes one backing dependency (database, verification store).
// Check returns nil while the dependency is reachable.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
