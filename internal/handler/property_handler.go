package handler

import (
	"net/http"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/dto"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service"
	"github.com/labstack/echo/v4"
)

type PropertyHandler struct {
	svc service.AvailabilityService
}

func NewPropertyHandler(svc service.AvailabilityService) *PropertyHandler {
	return &PropertyHandler{svc: svc}
}

func (h *PropertyHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/properties/:id/availability", h.GetAvailability)
	g.PATCH("/slots/:id", h.UpdateSlot)
}

// GetAvailability expects start and end as RFC 3339 timestamps.
func (h *PropertyHandler) GetAvailability(c echo.Context) error {
	propertyID, err := parseID(c, "property")
	if err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be an RFC 3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end must be an RFC 3339 timestamp")
	}

	slots, err := h.svc.GetAvailability(c.Request().Context(), propertyID, start, end)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *PropertyHandler) UpdateSlot(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	slotID, err := parseID(c, "slot")
	if err != nil {
		return err
	}

	var req dto.UpdateSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Active == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "active is required")
	}

	slot, err := h.svc.SetSlotActive(c.Request().Context(), actor, slotID, *req.Active)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSlotResponse(slot))
}
