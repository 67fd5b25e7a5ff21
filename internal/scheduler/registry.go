package scheduler

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the set of hosts known to this scheduler, keyed by worker id.
// Host equality is identity-based, so the worker id is the only key that
// matters; adding a host for an already-registered worker replaces the old
// wrapper.
//
// Thread-safe for concurrent access.
type Registry struct {
	mu    sync.RWMutex
	hosts map[string]*Host
}

// NewRegistry creates an empty host registry.
func NewRegistry() *Registry {
	return &Registry{
		hosts: make(map[string]*Host),
	}
}

// Add registers a host, replacing any previous host for the same worker.
func (r *Registry) Add(host *Host) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[host.ID()] = host
}

// Get returns the host for a worker id.
func (r *Registry) Get(id string) (*Host, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	host, ok := r.hosts[id]
	if !ok {
		return nil, fmt.Errorf("no host registered for worker %s", id)
	}
	return host, nil
}

// Remove deregisters the host for a worker id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.hosts[id]; !ok {
		return fmt.Errorf("no host registered for worker %s", id)
	}
	delete(r.hosts, id)
	return nil
}

// List returns all registered hosts ordered by worker id.
func (r *Registry) List() []*Host {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hosts := make([]*Host, 0, len(r.hosts))
	for _, host := range r.hosts {
		hosts = append(hosts, host)
	}
	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].ID() < hosts[j].ID()
	})
	return hosts
}

// Count returns the number of registered hosts.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hosts)
}
