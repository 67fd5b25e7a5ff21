package api

import (
	"time"

	"evalgo.org/gridium/internal/scheduler"
	"evalgo.org/gridium/models"
)

// HostsResponse represents a list of host snapshots.
type HostsResponse struct {
	Count int                      `json:"count"`
	Hosts []scheduler.HostSnapshot `json:"hosts"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// CapacityResponse reports whether a host can take a capability request.
type CapacityResponse struct {
	HostID       string              `json:"host_id"`
	Capabilities models.Capabilities `json:"capabilities"`
	HasCapacity  bool                `json:"has_capacity"`
}

// ReserveRequest asks for a session with the given capabilities.
type ReserveRequest struct {
	Capabilities models.Capabilities `json:"capabilities" validate:"required,min=1"`
}

// GridStatusResponse aggregates the state of every registered host.
type GridStatusResponse struct {
	Hosts          int     `json:"hosts"`
	HostsUp        int     `json:"hosts_up"`
	HostsDraining  int     `json:"hosts_draining"`
	HostsDown      int     `json:"hosts_down"`
	TotalSlots     int     `json:"total_slots"`
	AvailableSlots int     `json:"available_slots"`
	ActiveSlots    int     `json:"active_slots"`
	ReservedSlots  int     `json:"reserved_slots"`
	MeanLoad       float64 `json:"mean_load"`
}

// GridEventType names an event on the WebSocket stream.
type GridEventType string

const (
	EventHostUp         GridEventType = "host_up"
	EventHostDown       GridEventType = "host_down"
	EventHostDraining   GridEventType = "host_draining"
	EventHostUndrained  GridEventType = "host_undrained"
	EventSessionCreated GridEventType = "session_created"
)

// GridEvent is one message on the WebSocket stream.
type GridEvent struct {
	ID        string        `json:"id"`
	Type      GridEventType `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Data      interface{}   `json:"data"`
}

// HostStatusChange is the payload of host_* events.
type HostStatusChange struct {
	WorkerID string `json:"worker_id"`
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current"`
	Message  string `json:"message,omitempty"`
}
