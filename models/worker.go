package models

// CapacityEntry reports how many units of capacity a worker has for one
// capability descriptor.
type CapacityEntry struct {
	// Capabilities is the capability descriptor the capacity is typed with
	Capabilities Capabilities `json:"capabilities"`

	// Count is the number of slots for this descriptor
	Count int `json:"count"`
}

// WorkerStatus is a point-in-time capacity snapshot reported by a worker.
// It is read once when the host wrapper for the worker is constructed.
type WorkerStatus struct {
	// ID is the worker's stable unique identifier
	ID string `json:"id"`

	// Available lists capacity that is currently idle
	Available []CapacityEntry `json:"available"`

	// Used lists capacity that is currently occupied by running sessions
	Used []CapacityEntry `json:"used"`

	// MaxSessionCount is the worker-reported concurrent session ceiling
	MaxSessionCount int `json:"max_session_count"`
}

// TotalSlots returns the number of slots the snapshot describes.
func (s *WorkerStatus) TotalSlots() int {
	total := 0
	for _, e := range s.Available {
		total += e.Count
	}
	for _, e := range s.Used {
		total += e.Count
	}
	return total
}

// HealthResult is the outcome of a worker health check. An unreachable or
// unhealthy worker is reported as Alive=false with a diagnostic message,
// never as an error.
type HealthResult struct {
	// Alive indicates whether the worker answered and reported healthy
	Alive bool `json:"alive"`

	// Message is a human-readable diagnostic (e.g. the transport error)
	Message string `json:"message,omitempty"`
}
