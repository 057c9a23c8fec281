package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/middleware"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service"
	"github.com/labstack/echo/v4"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn func(ctx context.Context, actor principal.Principal, in service.CreateBookingInput) (*models.Booking, error)
	cancelFn func(ctx context.Context, actor principal.Principal, id uint, note string) (*models.Booking, error)
	deleteFn func(ctx context.Context, actor principal.Principal, id uint) error
	getFn    func(ctx context.Context, actor principal.Principal, id uint) (*models.Booking, error)
	listFn   func(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, actor principal.Principal, in service.CreateBookingInput) (*models.Booking, error) {
	return m.createFn(ctx, actor, in)
}
func (m *mockBookingService) CancelBooking(ctx context.Context, actor principal.Principal, id uint, note string) (*models.Booking, error) {
	return m.cancelFn(ctx, actor, id, note)
}
func (m *mockBookingService) DeleteBooking(ctx context.Context, actor principal.Principal, id uint) error {
	return m.deleteFn(ctx, actor, id)
}
func (m *mockBookingService) GetBooking(ctx context.Context, actor principal.Principal, id uint) (*models.Booking, error) {
	return m.getFn(ctx, actor, id)
}
func (m *mockBookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	return m.listFn(ctx, filter)
}

// --- Mock PaymentService ---

type mockPaymentService struct {
	recordFn  func(ctx context.Context, actor principal.Principal, in service.RecordPaymentInput) (*models.PaymentSummary, error)
	summaryFn func(ctx context.Context, actor principal.Principal, bookingID uint) (*models.PaymentSummary, error)
	listFn    func(ctx context.Context, actor principal.Principal, bookingID uint) ([]models.Payment, error)
}

func (m *mockPaymentService) RecordPayment(ctx context.Context, actor principal.Principal, in service.RecordPaymentInput) (*models.PaymentSummary, error) {
	return m.recordFn(ctx, actor, in)
}
func (m *mockPaymentService) GetPaymentSummary(ctx context.Context, actor principal.Principal, bookingID uint) (*models.PaymentSummary, error) {
	return m.summaryFn(ctx, actor, bookingID)
}
func (m *mockPaymentService) ListPayments(ctx context.Context, actor principal.Principal, bookingID uint) ([]models.Payment, error) {
	return m.listFn(ctx, actor, bookingID)
}

// --- Mock WashJobService ---

type mockWashJobService struct {
	transitionFn func(ctx context.Context, actor principal.Principal, id uint, action models.WashAction) (*models.WashJob, error)
	bulkFn       func(ctx context.Context, actor principal.Principal, ids []uint, action models.WashAction) (*service.BulkResult, error)
}

func (m *mockWashJobService) Transition(ctx context.Context, actor principal.Principal, id uint, action models.WashAction) (*models.WashJob, error) {
	return m.transitionFn(ctx, actor, id, action)
}
func (m *mockWashJobService) BulkTransition(ctx context.Context, actor principal.Principal, ids []uint, action models.WashAction) (*service.BulkResult, error) {
	return m.bulkFn(ctx, actor, ids, action)
}

// --- Mock AvailabilityService ---

type mockAvailabilityService struct {
	occupiedFn     func(ctx context.Context, propertyID uint, start, end time.Time) (map[uint]struct{}, error)
	availabilityFn func(ctx context.Context, propertyID uint, start, end time.Time) ([]service.SlotAvailability, error)
	setActiveFn    func(ctx context.Context, actor principal.Principal, slotID uint, active bool) (*models.Slot, error)
}

func (m *mockAvailabilityService) FindOccupiedSlots(ctx context.Context, propertyID uint, start, end time.Time) (map[uint]struct{}, error) {
	return m.occupiedFn(ctx, propertyID, start, end)
}
func (m *mockAvailabilityService) GetAvailability(ctx context.Context, propertyID uint, start, end time.Time) ([]service.SlotAvailability, error) {
	return m.availabilityFn(ctx, propertyID, start, end)
}
func (m *mockAvailabilityService) SetSlotActive(ctx context.Context, actor principal.Principal, slotID uint, active bool) (*models.Slot, error) {
	return m.setActiveFn(ctx, actor, slotID, active)
}

// --- Helpers ---

// call runs h behind the principal middleware, the way the router does.
func call(h echo.HandlerFunc, method, target string, body io.Reader, userID, roles string, params ...string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	if roles != "" {
		req.Header.Set(middleware.HeaderUserRoles, roles)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	err := middleware.Principal()(h)(c)
	return rec, err
}
