package handler

import (
	"net/http"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/dto"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service"
	"github.com/labstack/echo/v4"
)

type WashJobHandler struct {
	svc service.WashJobService
}

func NewWashJobHandler(svc service.WashJobService) *WashJobHandler {
	return &WashJobHandler{svc: svc}
}

func (h *WashJobHandler) RegisterRoutes(g *echo.Group) {
	// Static segment first so "bulk" is never taken for an id.
	g.POST("/wash-jobs/bulk", h.BulkTransition)
	g.POST("/wash-jobs/:id/:action", h.Transition)
}

func (h *WashJobHandler) Transition(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "wash job")
	if err != nil {
		return err
	}
	action, err := models.ParseWashAction(c.Param("action"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "action must be accept, confirm or cancel")
	}

	job, err := h.svc.Transition(c.Request().Context(), actor, id, action)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, dto.WashJobResponse{
		ID:        job.ID,
		Status:    job.Status,
		UpdatedBy: job.UpdatedBy,
	})
}

// BulkTransition always answers 200 with per-item outcomes; only a caller who
// may not touch wash jobs at all gets an error status.
func (h *WashJobHandler) BulkTransition(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}

	var req dto.BulkWashJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}
	action, err := models.ParseWashAction(req.Action)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "action must be accept, confirm or cancel")
	}

	res, err := h.svc.BulkTransition(c.Request().Context(), actor, req.IDs, action)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, res)
}
