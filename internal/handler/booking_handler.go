package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/dto"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	bookings := g.Group("/bookings")
	bookings.POST("", h.CreateBooking)
	bookings.GET("", h.ListBookings)
	bookings.GET("/:id", h.GetBooking)
	bookings.POST("/:id/cancel", h.CancelBooking)
	bookings.DELETE("/:id", h.DeleteBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PropertyID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "property_id is required")
	}
	if len(req.SlotIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "slot_ids is required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "start and end are required")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), actor, service.CreateBookingInput{
		PropertyID: req.PropertyID,
		SlotIDs:    req.SlotIDs,
		Start:      req.Start,
		End:        req.End,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	bookingID, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	// The body is optional.
	var req dto.CancelBookingRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}

	booking, err := h.svc.CancelBooking(c.Request().Context(), actor, bookingID, req.Note)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	bookingID, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteBooking(c.Request().Context(), actor, bookingID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// ListBookings filters by customer_id, property_id and status. Callers who
// are not staff only ever see their own bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}

	var filter repository.BookingFilter
	filter.CustomerID = c.QueryParam("customer_id")
	if !actor.IsStaff() {
		filter.CustomerID = actor.UserID
	}
	if p := c.QueryParam("property_id"); p != "" {
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid property_id")
		}
		filter.PropertyID = uint(id)
	}
	if s := c.QueryParam("status"); s != "" {
		bs := models.BookingStatus(strings.ToUpper(s))
		if !bs.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		filter.Status = &bs
	}

	bookings, err := h.svc.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return serviceError(err)
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}

	return c.JSON(http.StatusOK, resp)
}
