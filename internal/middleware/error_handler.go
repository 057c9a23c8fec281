package middleware

import (
	"errors"
	"net/http"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/dto"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/logger"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every error as {"code": ..., "message": ...}. When a
// handler attached a service error as the HTTPError's internal cause, the
// code is that error's kind.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	resp := dto.ErrorResponse{Code: string(service.KindInternal), Message: "internal server error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		resp.Code = codeForStatus(code)
		if m, ok := he.Message.(string); ok {
			resp.Message = m
		}
		if he.Internal != nil {
			resp.Code = string(service.KindOf(he.Internal))
			var conflict *service.SlotConflictError
			if errors.As(he.Internal, &conflict) {
				resp.SlotIDs = conflict.SlotIDs
			}
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Log.Error("[http] request failed",
			"method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, resp)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(service.KindInvalidInput)
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return string(service.KindForbidden)
	case http.StatusNotFound:
		return string(service.KindNotFound)
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return string(service.KindConflict)
	}
	if status >= http.StatusInternalServerError {
		return string(service.KindInternal)
	}
	return http.StatusText(status)
}
