package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/gridium/internal/scheduler"
)

// createSession handles POST /api/v1/hosts/:id/sessions
//
// The caller names the host; picking one is the distributor's job, not
// ours. The reservation itself is the two-phase protocol: claim a slot
// under the host lock, then create the session against the worker with no
// lock held. Draining and down hosts refuse new sessions outright.
func (s *Server) createSession(c echo.Context) error {
	id := c.Param("id")

	host, err := s.registry.Get(id)
	if err != nil {
		return NotFoundError("host", id)
	}

	var req ReserveRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("invalid request body", err.Error())
	}
	if err := s.validate.Struct(&req); err != nil {
		return BadRequestError("capabilities are required", err.Error())
	}

	if status := host.Status(); status != scheduler.HostUp {
		return ConflictError(
			"host not accepting sessions",
			"host "+id+" is "+status.String(),
		)
	}

	future, err := host.Reserve(req.Capabilities)
	if err != nil {
		return NoCapacityError(err.Error())
	}

	ctx := c.Request().Context()
	if s.config.Grid.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Grid.SessionTimeout)
		defer cancel()
	}

	session, err := future(ctx)
	if err != nil {
		return NoCapacityError(err.Error())
	}

	s.hub.BroadcastEvent(GridEvent{
		Type: EventSessionCreated,
		Data: session,
	})

	return c.JSON(http.StatusCreated, session)
}
