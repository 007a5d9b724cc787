package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler answers liveness probes.  It pings the database so the
// probe fails fast when the pool has lost its connections.
type HealthHandler struct{ DB *sql.DB }

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
