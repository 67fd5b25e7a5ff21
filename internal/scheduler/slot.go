// Package scheduler implements the per-host capacity core of Gridium: a
// fixed pool of typed execution slots per worker, a three-phase reservation
// protocol over those slots, and the liveness state machine that tracks
// whether the worker behind a host can take new work.
package scheduler

import (
	"context"
	"sync"
	"time"

	"evalgo.org/gridium/models"
)

// SlotStatus is the allocation state of a single slot.
type SlotStatus int

const (
	// SlotAvailable means the slot can be reserved
	SlotAvailable SlotStatus = iota

	// SlotReserved means the slot is claimed but its session has not
	// started yet
	SlotReserved

	// SlotActive means a session is running in the slot
	SlotActive
)

// String returns the lowercase name of the status.
func (s SlotStatus) String() string {
	switch s {
	case SlotAvailable:
		return "available"
	case SlotReserved:
		return "reserved"
	case SlotActive:
		return "active"
	default:
		return "unknown"
	}
}

// SessionFuture materializes a previously reserved session. It is invoked
// outside the host lock because it performs the actual, potentially slow,
// session creation against the worker. On failure the underlying slot is
// released back to available before the error is returned.
type SessionFuture func(ctx context.Context) (*models.Session, error)

// Slot is one schedulable unit of a host's capacity. Its registered
// capability descriptor is fixed at construction; its allocation state
// cycles available → reserved → active → available.
//
// All methods except the returned SessionFuture must be called with the
// owning host's lock held; the future synchronizes its own bookkeeping via
// the locker handed to NewSlot.
type Slot struct {
	worker     Worker
	registered models.Capabilities
	mu         sync.Locker

	status      SlotStatus
	lastStarted time.Time
	current     models.Capabilities
}

// NewSlot creates a slot backed by worker with a fixed registered
// capability descriptor. mu is the owning host's write lock, used by
// session futures to guard the start/end transitions they perform after the
// reservation scan has already returned.
func NewSlot(worker Worker, registered models.Capabilities, status SlotStatus, mu sync.Locker) *Slot {
	return &Slot{
		worker:     worker,
		registered: registered.Clone(),
		status:     status,
		mu:         mu,
	}
}

// Status returns the slot's allocation state.
func (s *Slot) Status() SlotStatus {
	return s.status
}

// Registered returns the slot's fixed capability descriptor.
func (s *Slot) Registered() models.Capabilities {
	return s.registered
}

// CurrentCapabilities returns the capability set of the session currently
// occupying the slot, or nil when no session is active.
func (s *Slot) CurrentCapabilities() models.Capabilities {
	return s.current
}

// LastSessionCreated returns when a session last started in this slot, or
// the zero time if none ever has.
func (s *Slot) LastSessionCreated() time.Time {
	return s.lastStarted
}

// IsSupporting reports whether the slot can serve the requested
// capabilities: every name present in the registered descriptor must carry
// the same value in the request. Names absent from the registered
// descriptor are not compared. A slot with an empty registered descriptor
// never matches, so an unconfigured slot cannot be selected.
func (s *Slot) IsSupporting(requested models.Capabilities) bool {
	if len(s.registered) == 0 {
		return false
	}
	for name, value := range s.registered {
		if requested[name] != value {
			return false
		}
	}
	return true
}

// Reserve claims the slot for the requested capabilities and returns a
// future that creates the session. The slot transitions to reserved
// immediately; invoking the future asks the worker for a session and either
// activates the slot or, on any failure, releases it back to available and
// returns a SessionNotCreatedError. The slot is never left reserved after a
// failed start.
func (s *Slot) Reserve(requested models.Capabilities) (SessionFuture, error) {
	if s.status != SlotAvailable {
		return nil, ErrSlotNotAvailable
	}
	s.status = SlotReserved

	caps := requested.Clone()
	return func(ctx context.Context) (*models.Session, error) {
		started := false
		defer func() {
			// Release the slot on every failure path, including a
			// panicking worker implementation.
			if !started {
				s.mu.Lock()
				s.End()
				s.mu.Unlock()
			}
		}()

		session, err := s.worker.NewSession(ctx, caps)
		if err != nil {
			return nil, &SessionNotCreatedError{WorkerID: s.worker.ID(), Capabilities: caps, Err: err}
		}
		if session == nil {
			return nil, &SessionNotCreatedError{WorkerID: s.worker.ID(), Capabilities: caps, Err: ErrNoSession}
		}

		s.mu.Lock()
		err = s.Start(caps)
		if err == nil {
			started = true
		}
		s.mu.Unlock()
		if err != nil {
			return nil, &SessionNotCreatedError{WorkerID: s.worker.ID(), Capabilities: caps, Err: err}
		}
		return session, nil
	}, nil
}

// Start records a session start: the slot becomes active, the granted
// capabilities are recorded, and the last-started timestamp is updated.
// The slot must be reserved.
func (s *Slot) Start(caps models.Capabilities) error {
	if s.status != SlotReserved {
		return ErrSlotNotReserved
	}
	s.lastStarted = time.Now()
	s.status = SlotActive
	s.current = caps.Clone()
	return nil
}

// End releases the slot back to available and clears the granted
// capabilities. It is valid in any state: it serves both normal session
// completion and the failure-recovery path inside Reserve.
func (s *Slot) End() {
	s.status = SlotAvailable
	s.current = nil
}
