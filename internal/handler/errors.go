package handler

import (
	"net/http"
	"strconv"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/middleware"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service"
	"github.com/labstack/echo/v4"
)

var kindStatus = map[service.Kind]int{
	service.KindNotFound:          http.StatusNotFound,
	service.KindInvalidInput:      http.StatusBadRequest,
	service.KindConflict:          http.StatusConflict,
	service.KindInvalidTransition: http.StatusConflict,
	service.KindAlreadySettled:    http.StatusConflict,
	service.KindAlreadyCancelled:  http.StatusConflict,
	service.KindGatewayDeclined:   http.StatusPaymentRequired,
	service.KindInvalidOperation:  http.StatusUnprocessableEntity,
	service.KindForbidden:         http.StatusForbidden,
}

// serviceError turns a service error into an HTTPError carrying the original
// as its internal cause, so the error handler can report its kind.
func serviceError(err error) *echo.HTTPError {
	status, ok := kindStatus[service.KindOf(err)]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}

func parseID(c echo.Context, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return uint(id), nil
}

// requireUser returns the caller, or 401 when the gateway sent no identity.
func requireUser(c echo.Context) (principal.Principal, error) {
	p := middleware.PrincipalFrom(c)
	if p.UserID == "" {
		return p, echo.NewHTTPError(http.StatusUnauthorized, "missing "+middleware.HeaderUserID+" header")
	}
	return p, nil
}
