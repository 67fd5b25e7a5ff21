// Package monitor drives the periodic health-check refresh for every host
// in the registry. The host itself owns the liveness state machine; this
// package only owns the timer policy (how often, and how long each probe
// may take).
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"evalgo.org/gridium/internal/scheduler"
)

// DefaultInterval is used when the configured interval is zero or negative.
const DefaultInterval = 30 * time.Second

// Monitor refreshes every registered host on a fixed interval.
type Monitor struct {
	registry *scheduler.Registry
	interval time.Duration
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New creates a monitor over the given registry. interval is the time
// between refresh rounds; timeout bounds each individual health check and
// may be zero to leave probes unbounded.
func New(registry *scheduler.Registry, interval, timeout time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		registry: registry,
		interval: interval,
		timeout:  timeout,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the refresh loop. The first round runs immediately so
// hosts do not sit in the down state for a full interval after startup.
func (m *Monitor) Start() {
	go func() {
		defer close(m.done)

		log.Printf("Health monitor started (interval: %s, hosts: %d)", m.interval, m.registry.Count())
		m.refreshAll()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				log.Println("Health monitor stopped")
				return
			case <-ticker.C:
				m.refreshAll()
			}
		}
	}()
}

// Stop cancels the refresh loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.once.Do(m.cancel)
	<-m.done
}

// refreshAll runs one health-check round over every registered host.
func (m *Monitor) refreshAll() {
	for _, host := range m.registry.List() {
		ctx := m.ctx
		var cancel context.CancelFunc
		if m.timeout > 0 {
			ctx, cancel = context.WithTimeout(m.ctx, m.timeout)
		}
		host.Refresh(ctx)
		if cancel != nil {
			cancel()
		}
	}
}
