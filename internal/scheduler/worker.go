package scheduler

import (
	"context"

	"evalgo.org/gridium/models"
)

// Worker is the external machine or process that actually executes
// sessions. The scheduler only ever talks to it through this interface;
// how a worker is discovered and what transport it speaks is decided
// elsewhere (see internal/worker for the HTTP client).
//
// Implementations must be safe for concurrent use: health checks run on the
// monitor's timer while session creation runs on request-handling
// goroutines.
type Worker interface {
	// ID returns the worker's stable unique identifier.
	ID() string

	// Status reports the worker's current capacity snapshot.
	Status(ctx context.Context) (*models.WorkerStatus, error)

	// HealthCheck probes the worker's liveness. An unreachable worker is a
	// normal outcome reported as Alive=false, never an error.
	HealthCheck(ctx context.Context) models.HealthResult

	// NewSession asks the worker to create a session for the requested
	// capabilities. A nil session without an error is a creation failure.
	NewSession(ctx context.Context, caps models.Capabilities) (*models.Session, error)
}
