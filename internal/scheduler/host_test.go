package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/gridium/models"
)

var linuxCaps = models.Capabilities{"platform": "linux"}

func newTestWorker(available, used, maxSessions int) *fakeWorker {
	status := &models.WorkerStatus{
		ID:              "worker-1",
		MaxSessionCount: maxSessions,
	}
	if available > 0 {
		status.Available = []models.CapacityEntry{{Capabilities: linuxCaps, Count: available}}
	}
	if used > 0 {
		status.Used = []models.CapacityEntry{{Capabilities: linuxCaps, Count: used}}
	}
	return &fakeWorker{
		id:     "worker-1",
		status: status,
		health: models.HealthResult{Alive: true, Message: "ok"},
	}
}

func TestNewHost(t *testing.T) {
	worker := newTestWorker(3, 1, 10)
	host, err := NewHost(context.Background(), worker)
	require.NoError(t, err)

	assert.Equal(t, "worker-1", host.ID())
	assert.Equal(t, 4, host.TotalSlots())
	assert.Equal(t, 4, host.MaxSessionCount(), "ceiling is capped by the slot count")
	assert.Equal(t, HostDown, host.Status(), "a new host is down until its first health check")
	assert.Equal(t, 25.0, host.Load(), "one of four slots is active")
}

func TestNewHostWorkerCeiling(t *testing.T) {
	worker := newTestWorker(4, 0, 2)
	host, err := NewHost(context.Background(), worker)
	require.NoError(t, err)

	assert.Equal(t, 4, host.TotalSlots())
	assert.Equal(t, 2, host.MaxSessionCount(), "worker-reported ceiling wins when lower")
}

func TestNewHostStatusError(t *testing.T) {
	worker := &fakeWorker{id: "worker-1", statusErr: errors.New("unreachable")}
	_, err := NewHost(context.Background(), worker)
	assert.Error(t, err)
}

func TestHostEqualityByWorkerID(t *testing.T) {
	a, err := NewHost(context.Background(), newTestWorker(2, 0, 2))
	require.NoError(t, err)
	b, err := NewHost(context.Background(), newTestWorker(2, 0, 2))
	require.NoError(t, err)

	// Mutate one side; identity must be unaffected.
	_, err = a.Reserve(linuxCaps)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(nil))
}

func TestHostHasCapacity(t *testing.T) {
	host, err := NewHost(context.Background(), newTestWorker(1, 0, 1))
	require.NoError(t, err)

	assert.True(t, host.HasCapacity(linuxCaps))
	assert.False(t, host.HasCapacity(models.Capabilities{"platform": "windows"}))

	_, err = host.Reserve(linuxCaps)
	require.NoError(t, err)
	assert.False(t, host.HasCapacity(linuxCaps), "a reserved slot is no longer capacity")
}

func TestHostLoadZeroCeiling(t *testing.T) {
	host, err := NewHost(context.Background(), newTestWorker(0, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, 0.0, host.Load())
	assert.False(t, host.HasCapacity(linuxCaps))
}

func TestHostReserveNoMatch(t *testing.T) {
	host, err := NewHost(context.Background(), newTestWorker(2, 0, 2))
	require.NoError(t, err)

	_, err = host.Reserve(models.Capabilities{"platform": "windows"})
	require.Error(t, err)
	assert.True(t, IsSessionNotCreated(err))
	assert.ErrorIs(t, err, ErrNoMatchingSlot)
}

func TestHostReserveRoundTrip(t *testing.T) {
	worker := newTestWorker(2, 0, 2)
	host, err := NewHost(context.Background(), worker)
	require.NoError(t, err)

	before := host.LastSessionCreated()
	assert.True(t, before.IsZero())

	future, err := host.Reserve(linuxCaps)
	require.NoError(t, err)
	assert.Equal(t, 50.0, host.Load(), "reserved slots count against the load")

	session, err := future(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "worker-1", session.WorkerID)

	assert.Equal(t, 50.0, host.Load())
	assert.True(t, host.LastSessionCreated().After(before))
}

func TestHostReserveFailureReleasesSlot(t *testing.T) {
	worker := newTestWorker(1, 0, 1)
	worker.newSession = func(ctx context.Context, caps models.Capabilities) (*models.Session, error) {
		return nil, errors.New("no can do")
	}
	host, err := NewHost(context.Background(), worker)
	require.NoError(t, err)

	future, err := host.Reserve(linuxCaps)
	require.NoError(t, err)
	assert.Equal(t, 100.0, host.Load())

	_, err = future(context.Background())
	assert.True(t, IsSessionNotCreated(err))

	assert.Equal(t, 0.0, host.Load(), "failed session creation must free the slot")
	assert.True(t, host.HasCapacity(linuxCaps))
}

func TestHostConcurrentReserve(t *testing.T) {
	const slots = 5
	const callers = 50

	host, err := NewHost(context.Background(), newTestWorker(slots, 0, slots))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, failed := 0, 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := host.Reserve(linuxCaps)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if IsSessionNotCreated(err) {
				failed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, slots, succeeded, "exactly one reservation per slot")
	assert.Equal(t, callers-slots, failed)
	assert.Equal(t, 100.0, host.Load())
}

func TestHostRefreshTransitions(t *testing.T) {
	worker := newTestWorker(1, 0, 1)
	host, err := NewHost(context.Background(), worker)
	require.NoError(t, err)

	var changes []HostStatus
	host.OnStatusChange = func(id string, previous, current HostStatus, message string) {
		changes = append(changes, current)
	}

	ctx := context.Background()
	require.Equal(t, HostDown, host.Status())

	worker.health = models.HealthResult{Alive: true, Message: "ok"}
	host.Refresh(ctx)
	assert.Equal(t, HostUp, host.Status())

	// Same liveness again: no further notification.
	host.Refresh(ctx)
	assert.Equal(t, HostUp, host.Status())

	worker.health = models.HealthResult{Alive: false, Message: "connection refused"}
	host.Refresh(ctx)
	assert.Equal(t, HostDown, host.Status())

	assert.Equal(t, []HostStatus{HostUp, HostDown}, changes,
		"only genuine up/down transitions are observable")
}

func TestHostDrainingSurvivesRefresh(t *testing.T) {
	worker := newTestWorker(1, 0, 1)
	host, err := NewHost(context.Background(), worker)
	require.NoError(t, err)

	var notified int
	host.OnStatusChange = func(id string, previous, current HostStatus, message string) {
		notified++
	}

	ctx := context.Background()
	host.Drain()
	require.Equal(t, HostDraining, host.Status())
	assert.True(t, host.IsDraining())

	worker.health = models.HealthResult{Alive: true}
	for i := 0; i < 3; i++ {
		host.Refresh(ctx)
		assert.Equal(t, HostDraining, host.Status())
	}
	worker.health = models.HealthResult{Alive: false}
	host.Refresh(ctx)
	assert.Equal(t, HostDraining, host.Status())
	assert.Zero(t, notified, "draining refreshes are silent")

	host.Undrain()
	assert.False(t, host.IsDraining())
	assert.Equal(t, HostDown, host.Status(), "status is unknown until the next check")

	worker.health = models.HealthResult{Alive: true}
	host.Refresh(ctx)
	assert.Equal(t, HostUp, host.Status())
}

func TestHostSnapshot(t *testing.T) {
	host, err := NewHost(context.Background(), newTestWorker(3, 1, 4))
	require.NoError(t, err)

	_, err = host.Reserve(linuxCaps)
	require.NoError(t, err)

	snap := host.Snapshot(true)
	assert.Equal(t, "worker-1", snap.ID)
	assert.Equal(t, "down", snap.Status)
	assert.Equal(t, 4, snap.TotalSlots)
	assert.Equal(t, 2, snap.AvailableSlots)
	assert.Equal(t, 1, snap.ReservedSlots)
	assert.Equal(t, 1, snap.ActiveSlots)
	assert.Equal(t, 50.0, snap.Load)
	assert.Len(t, snap.Slots, 4)

	summary := host.Snapshot(false)
	assert.Empty(t, summary.Slots)
}
