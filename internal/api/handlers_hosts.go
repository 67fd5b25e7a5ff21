package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/gridium/internal/scheduler"
	"evalgo.org/gridium/models"
)

// listHosts handles GET /api/v1/hosts
func (s *Server) listHosts(c echo.Context) error {
	statusFilter := c.QueryParam("status")

	hosts := s.registry.List()
	snapshots := make([]scheduler.HostSnapshot, 0, len(hosts))
	for _, host := range hosts {
		snap := host.Snapshot(false)
		if statusFilter != "" && snap.Status != statusFilter {
			continue
		}
		snapshots = append(snapshots, snap)
	}

	return c.JSON(http.StatusOK, HostsResponse{
		Count: len(snapshots),
		Hosts: snapshots,
	})
}

// getHost handles GET /api/v1/hosts/:id
func (s *Server) getHost(c echo.Context) error {
	id := c.Param("id")

	host, err := s.registry.Get(id)
	if err != nil {
		return NotFoundError("host", id)
	}

	return c.JSON(http.StatusOK, host.Snapshot(true))
}

// hostCapacity handles GET /api/v1/hosts/:id/capacity
//
// Capabilities are passed as query parameters, e.g.
// ?platform=linux&runtime=go1.22. The answer is advisory: a reservation can
// still lose the race against another caller.
func (s *Server) hostCapacity(c echo.Context) error {
	id := c.Param("id")

	host, err := s.registry.Get(id)
	if err != nil {
		return NotFoundError("host", id)
	}

	caps := make(models.Capabilities)
	for name, values := range c.QueryParams() {
		if len(values) > 0 {
			caps[name] = values[0]
		}
	}
	if len(caps) == 0 {
		return BadRequestError("capabilities required", "pass capabilities as query parameters, e.g. ?platform=linux")
	}

	return c.JSON(http.StatusOK, CapacityResponse{
		HostID:       id,
		Capabilities: caps,
		HasCapacity:  host.HasCapacity(caps),
	})
}

// drainHost handles POST /api/v1/hosts/:id/drain
func (s *Server) drainHost(c echo.Context) error {
	id := c.Param("id")

	host, err := s.registry.Get(id)
	if err != nil {
		return NotFoundError("host", id)
	}

	host.Drain()
	s.hub.BroadcastEvent(GridEvent{
		Type: EventHostDraining,
		Data: HostStatusChange{WorkerID: id, Current: scheduler.HostDraining.String()},
	})

	return c.JSON(http.StatusOK, MessageResponse{Message: "host draining", ID: id})
}

// undrainHost handles DELETE /api/v1/hosts/:id/drain
func (s *Server) undrainHost(c echo.Context) error {
	id := c.Param("id")

	host, err := s.registry.Get(id)
	if err != nil {
		return NotFoundError("host", id)
	}

	host.Undrain()
	s.hub.BroadcastEvent(GridEvent{
		Type: EventHostUndrained,
		Data: HostStatusChange{WorkerID: id, Current: host.Status().String()},
	})

	return c.JSON(http.StatusOK, MessageResponse{Message: "host undrained", ID: id})
}

// gridStatus handles GET /api/v1/grid/status
func (s *Server) gridStatus(c echo.Context) error {
	var resp GridStatusResponse
	var loadSum float64

	for _, host := range s.registry.List() {
		snap := host.Snapshot(false)
		resp.Hosts++
		switch snap.Status {
		case scheduler.HostUp.String():
			resp.HostsUp++
		case scheduler.HostDraining.String():
			resp.HostsDraining++
		default:
			resp.HostsDown++
		}
		resp.TotalSlots += snap.TotalSlots
		resp.AvailableSlots += snap.AvailableSlots
		resp.ActiveSlots += snap.ActiveSlots
		resp.ReservedSlots += snap.ReservedSlots
		loadSum += snap.Load
	}
	if resp.Hosts > 0 {
		resp.MeanLoad = loadSum / float64(resp.Hosts)
	}

	return c.JSON(http.StatusOK, resp)
}
