// Package gridium tracks per-host capacity and schedules sessions onto
// worker slots in a distributed execution grid.
//
// # Overview
//
// Every worker in the grid is represented as a host with a fixed pool of
// slots. Each slot is typed by the capabilities it was registered with
// (platform, runtime, and so on) and moves through a strict lifecycle:
// available, reserved, active, and back to available. Reserving a session
// is a two-phase protocol: a slot is claimed under the host's lock, then
// the session is created against the worker with no lock held, so a slow
// worker never blocks capacity queries or other reservations.
//
// The scheduler consists of three main components:
//   - Scheduler core: hosts, slots, and the registry of hosts
//   - Health monitor: periodic liveness refresh of every worker
//   - API server: REST API plus a WebSocket stream of grid events
//
// # Architecture
//
//	┌─────────────────┐
//	│   API Clients   │
//	│ (REST + WS)     │
//	└────────┬────────┘
//	         │
//	┌────────▼────────┐       ┌─────────────────┐
//	│  API Server     │◄──────┤ Health Monitor  │
//	│  (Echo REST)    │       │ (periodic)      │
//	└────────┬────────┘       └────────┬────────┘
//	         │                         │
//	┌────────▼─────────────────────────▼────────┐
//	│            Host Registry                  │
//	│   (hosts, slots, reservations)            │
//	└────────┬──────────────────────────────────┘
//	         │ HTTP
//	┌────────▼────────┐
//	│  Worker Agents  │
//	└─────────────────┘
//
// # Usage
//
// Start the scheduler:
//
//	gridium server --config config.yaml
//
// Generate tokens:
//
//	gridium token user ci-pipeline --roles user
//	gridium token agent worker-01
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml)
//   - Environment variables (GD_ prefix)
//   - .env file
//
// The worker pool itself lives in a separate workers file:
//
//	workers:
//	  - id: worker-01
//	    url: http://worker-01:5555
//	    token: "..."
//
// # API Endpoints
//
// Hosts:
//   - GET    /api/v1/hosts                 - List host snapshots
//   - GET    /api/v1/hosts/:id             - Host detail with per-slot state
//   - GET    /api/v1/hosts/:id/capacity    - Capability capacity query
//   - POST   /api/v1/hosts/:id/drain       - Mark host draining
//   - DELETE /api/v1/hosts/:id/drain       - Clear the drain
//   - POST   /api/v1/hosts/:id/sessions    - Reserve a slot and start a session
//
// Grid:
//   - GET /api/v1/grid/status  - Aggregate slot counts and load
//   - GET /ws                  - WebSocket stream of grid events
//
// # Technology Stack
//
//   - Go 1.25+
//   - Echo v4 (Web framework)
//   - Cobra + Viper (CLI and configuration)
//   - golang-jwt (Authentication)
//   - Gorilla WebSocket (Event stream)
package gridium
