package models

import "time"

// Session is a unit of work running on a worker, created once a slot
// reservation completes successfully.
type Session struct {
	// ID is the session's unique identifier, assigned by the worker
	ID string `json:"id"`

	// WorkerID identifies the worker executing the session
	WorkerID string `json:"worker_id"`

	// Capabilities is the capability set the session was granted
	Capabilities Capabilities `json:"capabilities"`

	// StartedAt is when the worker started the session
	StartedAt time.Time `json:"started_at"`

	// URI is the worker-local endpoint for interacting with the session
	URI string `json:"uri,omitempty"`
}
