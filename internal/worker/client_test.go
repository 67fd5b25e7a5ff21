package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/gridium/models"
)

func TestClientStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/status", r.URL.Path)
		require.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(models.WorkerStatus{
			ID:              "worker-1",
			MaxSessionCount: 4,
			Available: []models.CapacityEntry{
				{Capabilities: models.Capabilities{"platform": "linux"}, Count: 4},
			},
		})
	}))
	defer srv.Close()

	client := New("worker-1", srv.URL, "secret-token")
	status, err := client.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "worker-1", status.ID)
	assert.Equal(t, 4, status.MaxSessionCount)
	assert.Equal(t, 4, status.TotalSlots())
}

func TestClientStatusFillsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.WorkerStatus{MaxSessionCount: 1})
	}))
	defer srv.Close()

	client := New("configured-id", srv.URL, "")
	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "configured-id", status.ID)
}

func TestClientHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(models.HealthResult{Alive: true})
	}))
	defer srv.Close()

	client := New("worker-1", srv.URL, "")
	result := client.HealthCheck(context.Background())
	assert.True(t, result.Alive)
	assert.Equal(t, "ok", result.Message)
}

func TestClientHealthCheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before use

	client := New("worker-1", srv.URL, "")
	result := client.HealthCheck(context.Background())
	assert.False(t, result.Alive)
	assert.NotEmpty(t, result.Message)
}

func TestClientHealthCheckServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New("worker-1", srv.URL, "")
	result := client.HealthCheck(context.Background())
	assert.False(t, result.Alive)
	assert.Contains(t, result.Message, "503")
}

func TestClientNewSession(t *testing.T) {
	caps := models.Capabilities{"platform": "linux"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/session", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Capabilities models.Capabilities `json:"capabilities"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, caps, req.Capabilities)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Session{ID: "sess-42", Capabilities: req.Capabilities})
	}))
	defer srv.Close()

	client := New("worker-1", srv.URL, "")
	session, err := client.NewSession(context.Background(), caps)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "sess-42", session.ID)
	assert.Equal(t, "worker-1", session.WorkerID, "worker id is filled in when missing")
}

func TestClientNewSessionEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Session{})
	}))
	defer srv.Close()

	client := New("worker-1", srv.URL, "")
	session, err := client.NewSession(context.Background(), models.Capabilities{"platform": "linux"})
	require.NoError(t, err)
	assert.Nil(t, session, "a session without an id is no session")
}

func TestClientNewSessionDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "at capacity", http.StatusConflict)
	}))
	defer srv.Close()

	client := New("worker-1", srv.URL, "")
	session, err := client.NewSession(context.Background(), models.Capabilities{"platform": "linux"})
	assert.Error(t, err)
	assert.Nil(t, session)
}
