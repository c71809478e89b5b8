package handler // package handler contains the HTTP handlers of the layout and checkout API

import (
	"net/http" // status codes

	"github.com/labstack/echo/v4" // web framework
)

// Health is the liveness endpoint used by load balancers.  It answers a
// plain "ok" with 200 and touches no dependency.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
