package handler

import (
	"net/http"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/dto"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/bookings/:id/payments", h.RecordPayment)
	g.GET("/bookings/:id/payments", h.ListPayments)
	g.GET("/bookings/:id/payment-summary", h.GetPaymentSummary)
}

func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	bookingID, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	var req dto.RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	method, err := models.ParsePaymentMethod(req.Method)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "method must be CARD or CASH")
	}
	if method == models.MethodCard && req.CardToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "card_token is required for card payments")
	}

	summary, err := h.svc.RecordPayment(c.Request().Context(), actor, service.RecordPaymentInput{
		BookingID: bookingID,
		Amount:    req.Amount,
		Method:    method,
		CardToken: req.CardToken,
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToPaymentSummaryResponse(summary))
}

func (h *PaymentHandler) ListPayments(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	bookingID, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	payments, err := h.svc.ListPayments(c.Request().Context(), actor, bookingID)
	if err != nil {
		return serviceError(err)
	}

	resp := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		resp[i] = dto.ToPaymentResponse(&payments[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetPaymentSummary(c echo.Context) error {
	actor, err := requireUser(c)
	if err != nil {
		return err
	}
	bookingID, err := parseID(c, "booking")
	if err != nil {
		return err
	}

	summary, err := h.svc.GetPaymentSummary(c.Request().Context(), actor, bookingID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPaymentSummaryResponse(summary))
}
