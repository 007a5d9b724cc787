// Package handler contains the Echo HTTP handlers.  Handlers own request
// parsing, permission checks and transaction boundaries; repositories own
// the SQL.  Every error leaves through respondError so clients always see
// the same {status, code, message} shape.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/GoormOnlyOne/onlyone-server/internal/apperr"
	"github.com/GoormOnlyOne/onlyone-server/internal/middleware"
)

// dbTimeout bounds every database round trip started by a handler.
const dbTimeout = 5 * time.Second

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// userID returns the authenticated user's id injected by the JWT
// middleware.  Routes calling this must be registered behind JWTAuth.
func userID(c echo.Context) uint64 {
	id, _ := c.Get(middleware.ContextUserID).(uint64)
	return id
}

// pathID parses a numeric path parameter.  Zero means the parameter was
// missing or malformed; callers turn that into InvalidInput.
func pathID(c echo.Context, name string) uint64 {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type errorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps any error to the wire error shape.  Internal errors
// are logged with the route for diagnosis but surface only a generic
// message.
func respondError(c echo.Context, err error) error {
	e := apperr.From(err)
	status := apperr.HTTPStatus(e)
	if e.Kind == apperr.KindInternal {
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"err", err)
		return c.JSON(http.StatusInternalServerError, errorBody{
			Status:  http.StatusInternalServerError,
			Code:    e.Code,
			Message: "internal error",
		})
	}
	return c.JSON(status, errorBody{Status: status, Code: e.Code, Message: e.Message})
}
