package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"evalgo.org/gridium/models"
)

// HostStatus is the liveness state of a host.
type HostStatus int32

const (
	// HostDown means the worker failed its last health check (or has not
	// passed one yet)
	HostDown HostStatus = iota

	// HostUp means the worker passed its last health check
	HostUp

	// HostDraining means an administrator asked the host to finish its
	// current sessions and accept no new ones
	HostDraining
)

// String returns the lowercase name of the status.
func (s HostStatus) String() string {
	switch s {
	case HostDown:
		return "down"
	case HostUp:
		return "up"
	case HostDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// StatusChangeFunc is notified when a health check genuinely changes a
// host's status (up↔down). It is not called when a refresh confirms the
// previous state, nor while a drain override is in effect.
type StatusChangeFunc func(workerID string, previous, current HostStatus, message string)

// Host is the concurrency-safe scheduling façade over one worker's fixed
// slot pool. It owns capacity and load accounting, the single entry point
// for reserving a slot, and the liveness state machine fed by periodic
// health checks.
//
// A single reader-writer lock guards all slot bookkeeping. The lock is
// never held across a session creation call to the worker: Reserve only
// holds it for the scan-and-mark step, and the returned future re-acquires
// it for the final start/end transition. The host status word lives outside
// that lock so health checks never contend with scheduling traffic.
type Host struct {
	worker          Worker
	id              string
	maxSessionCount int

	status   atomic.Int32
	draining atomic.Bool

	mu    sync.RWMutex
	slots []*Slot

	// OnStatusChange, when set before the first Refresh, observes genuine
	// up↔down transitions.
	OnStatusChange StatusChangeFunc
}

// NewHost builds a host from the worker's current capacity snapshot: one
// available slot per unit of idle capacity, one active slot per unit
// already in use. The slot pool never grows or shrinks afterwards. The host
// starts down until its first successful health check.
func NewHost(ctx context.Context, worker Worker) (*Host, error) {
	status, err := worker.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status of worker %s: %w", worker.ID(), err)
	}

	h := &Host{worker: worker, id: status.ID}
	if h.id == "" {
		h.id = worker.ID()
	}

	for _, entry := range status.Available {
		for i := 0; i < entry.Count; i++ {
			h.slots = append(h.slots, NewSlot(worker, entry.Capabilities, SlotAvailable, &h.mu))
		}
	}
	for _, entry := range status.Used {
		for i := 0; i < entry.Count; i++ {
			h.slots = append(h.slots, NewSlot(worker, entry.Capabilities, SlotActive, &h.mu))
		}
	}

	// We can never run more sessions than we have slots, whatever ceiling
	// the worker reports.
	h.maxSessionCount = len(h.slots)
	if status.MaxSessionCount < h.maxSessionCount {
		h.maxSessionCount = status.MaxSessionCount
	}

	h.status.Store(int32(HostDown))
	return h, nil
}

// ID returns the identifier of the underlying worker.
func (h *Host) ID() string {
	return h.id
}

// Equal reports whether both hosts wrap the same worker. Slot contents and
// status are deliberately ignored: identity is the worker id alone.
func (h *Host) Equal(other *Host) bool {
	return other != nil && h.id == other.id
}

// Status returns the host's current liveness state.
func (h *Host) Status() HostStatus {
	return HostStatus(h.status.Load())
}

// setStatus swaps in the given status and returns the previous one.
func (h *Host) setStatus(status HostStatus) HostStatus {
	return HostStatus(h.status.Swap(int32(status)))
}

// Drain puts the host into the draining state. Existing sessions keep
// running but no new reservations should be routed here. The state survives
// health checks until Undrain is called.
func (h *Host) Drain() {
	h.draining.Store(true)
	previous := h.setStatus(HostDraining)
	if previous != HostDraining {
		log.Printf("Host %s entering draining state (was %s)", h.id, previous)
	}
}

// Undrain lifts the drain override. The host reverts to down until the next
// health check re-establishes its actual liveness.
func (h *Host) Undrain() {
	h.draining.Store(false)
	previous := h.setStatus(HostDown)
	if previous == HostDraining {
		log.Printf("Host %s leaving draining state", h.id)
	}
}

// IsDraining reports whether a drain override is in effect.
func (h *Host) IsDraining() bool {
	return h.draining.Load()
}

// Refresh runs one health check against the worker and folds the result
// into the host status. A drain override always wins: a refresh must never
// silently clear the draining state, whatever liveness the worker reports.
// Health-check failures are data (down), never errors.
func (h *Host) Refresh(ctx context.Context) {
	result := h.worker.HealthCheck(ctx)

	current := HostDown
	if result.Alive {
		current = HostUp
	}

	previous := h.setStatus(current)
	if previous == HostDraining || h.draining.Load() {
		// We want to continue to let the host drain.
		h.setStatus(HostDraining)
		return
	}

	if current != previous {
		log.Printf("Changing status of host %s from %s to %s. Reason: %s",
			h.id, previous, current, result.Message)
		if h.OnStatusChange != nil {
			h.OnStatusChange(h.id, previous, current, result.Message)
		}
	}
}

// HasCapacity reports whether at least one available slot supports the
// requested capabilities. This is advisory only: a subsequent Reserve can
// still lose the race to another caller.
func (h *Host) HasCapacity(caps models.Capabilities) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, slot := range h.slots {
		if slot.Status() == SlotAvailable && slot.IsSupporting(caps) {
			return true
		}
	}
	return false
}

// Load returns the host's utilization as a percentage of its session
// ceiling: 100 × (slots not available) / maxSessionCount. A host with a
// zero session ceiling always reports 0, never a division error.
func (h *Host) Load() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.maxSessionCount == 0 {
		return 0
	}

	inUse := 0
	for _, slot := range h.slots {
		if slot.Status() != SlotAvailable {
			inUse++
		}
	}
	return float64(inUse) / float64(h.maxSessionCount) * 100
}

// LastSessionCreated returns the most recent session start time across all
// slots, or the zero time if no session ever started here.
func (h *Host) LastSessionCreated() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var last time.Time
	for _, slot := range h.slots {
		if t := slot.LastSessionCreated(); t.After(last) {
			last = t
		}
	}
	return last
}

// MaxSessionCount returns the host's concurrent session ceiling.
func (h *Host) MaxSessionCount() int {
	return h.maxSessionCount
}

// TotalSlots returns the fixed size of the slot pool.
func (h *Host) TotalSlots() int {
	return len(h.slots)
}

// Reserve claims the first available slot supporting the requested
// capabilities and returns the future that creates its session. The write
// lock is held only for this scan-and-mark step, so a slow session start on
// one slot never blocks queries or reservations against the rest of the
// pool. When no slot matches, Reserve fails immediately with a
// SessionNotCreatedError.
func (h *Host) Reserve(caps models.Capabilities) (SessionFuture, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, slot := range h.slots {
		if slot.Status() == SlotAvailable && slot.IsSupporting(caps) {
			return slot.Reserve(caps)
		}
	}
	return nil, &SessionNotCreatedError{WorkerID: h.id, Capabilities: caps, Err: ErrNoMatchingSlot}
}

// HostSnapshot is a consistent point-in-time view of a host, shaped for the
// API layer.
type HostSnapshot struct {
	ID                 string         `json:"id"`
	Status             string         `json:"status"`
	Load               float64        `json:"load"`
	MaxSessionCount    int            `json:"max_session_count"`
	TotalSlots         int            `json:"total_slots"`
	AvailableSlots     int            `json:"available_slots"`
	ReservedSlots      int            `json:"reserved_slots"`
	ActiveSlots        int            `json:"active_slots"`
	LastSessionCreated time.Time      `json:"last_session_created,omitempty"`
	Slots              []SlotSnapshot `json:"slots,omitempty"`
}

// SlotSnapshot describes one slot inside a HostSnapshot.
type SlotSnapshot struct {
	Status             string              `json:"status"`
	Registered         models.Capabilities `json:"registered"`
	Current            models.Capabilities `json:"current,omitempty"`
	LastSessionCreated time.Time           `json:"last_session_created,omitempty"`
}

// Snapshot captures the host's slot pool and derived metrics under a single
// read lock, so counts, load and per-slot detail are mutually consistent.
// Per-slot detail is included only when detailed is true.
func (h *Host) Snapshot(detailed bool) HostSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snap := HostSnapshot{
		ID:              h.id,
		Status:          h.Status().String(),
		MaxSessionCount: h.maxSessionCount,
		TotalSlots:      len(h.slots),
	}

	var last time.Time
	for _, slot := range h.slots {
		switch slot.Status() {
		case SlotAvailable:
			snap.AvailableSlots++
		case SlotReserved:
			snap.ReservedSlots++
		case SlotActive:
			snap.ActiveSlots++
		}
		if t := slot.LastSessionCreated(); t.After(last) {
			last = t
		}
		if detailed {
			snap.Slots = append(snap.Slots, SlotSnapshot{
				Status:             slot.Status().String(),
				Registered:         slot.Registered().Clone(),
				Current:            slot.CurrentCapabilities().Clone(),
				LastSessionCreated: slot.LastSessionCreated(),
			})
		}
	}
	snap.LastSessionCreated = last

	if h.maxSessionCount > 0 {
		inUse := snap.ReservedSlots + snap.ActiveSlots
		snap.Load = float64(inUse) / float64(h.maxSessionCount) * 100
	}
	return snap
}
