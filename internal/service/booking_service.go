package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/ledger"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/pricing"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	PropertyID uint
	SlotIDs    []uint
	Start      time.Time
	End        time.Time
	// CustomerID lets counter staff book on behalf of a walk-in customer.
	// Ignored for everyone else, who always books for themselves.
	CustomerID string
}

type BookingService interface {
	CreateBooking(ctx context.Context, actor principal.Principal, in CreateBookingInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, actor principal.Principal, bookingID uint, note string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, actor principal.Principal, bookingID uint) error
	GetBooking(ctx context.Context, actor principal.Principal, id uint) (*models.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	propertyRepo repository.PropertyRepository
	paymentRepo  repository.PaymentRepository
	auditRepo    repository.AuditRepository
	publisher    EventPublisher
	cache        AvailabilityCache
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	propertyRepo repository.PropertyRepository,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	publisher EventPublisher,
	cache AvailabilityCache,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		paymentRepo:  paymentRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		cache:        cache,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor principal.Principal, in CreateBookingInput) (result *models.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.CreateBooking")
	span.SetAttributes(attribute.Int64("property.id", int64(in.PropertyID)))
	defer func() { endSpan(span, err) }()

	if !in.Start.Before(in.End) {
		return nil, ErrInvalidWindow
	}
	slotIDs := uniqueSorted(in.SlotIDs)
	if len(slotIDs) == 0 {
		return nil, ErrNoSlots
	}
	customerID := actor.UserID
	if in.CustomerID != "" && actor.IsStaff() {
		customerID = in.CustomerID
	}
	if customerID == "" {
		return nil, ErrMissingCustomer
	}
	start, end := in.Start.UTC(), in.End.UTC()

	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Property must exist and be open for bookings
		property, err := s.propertyRepo.FindByID(ctx, tx, in.PropertyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyNotFound
			}
			return err
		}
		if !property.Active {
			return ErrPropertyInactive
		}

		// 2. Lock the slot rows so concurrent bookings on the same slots queue up
		slots, err := s.propertyRepo.LockSlots(ctx, tx, property.ID, slotIDs)
		if err != nil {
			return err
		}
		if len(slots) != len(slotIDs) {
			return ErrForeignSlot
		}
		for _, slot := range slots {
			if !slot.Active {
				return ErrSlotMaintenance
			}
		}

		// 3. Re-check overlap under the lock
		taken, err := s.bookingRepo.FindOccupiedSlotIDs(ctx, tx, property.ID, slotIDs, start, end)
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return &SlotConflictError{SlotIDs: uniqueSorted(taken)}
		}

		// 4. Price and insert booking + slots + wash jobs
		total := pricing.Total(property, start, end, pricing.Lines(slots), property.ServiceFee)
		booking := &models.Booking{
			CustomerID:  customerID,
			PropertyID:  property.ID,
			StartTime:   start,
			EndTime:     end,
			Status:      models.StatusPending,
			TotalAmount: total,
			Currency:    property.Currency,
		}
		for _, slot := range slots {
			bs := models.BookingSlot{SlotID: slot.ID}
			if slot.Type == models.SlotCarWash {
				bs.WashJob = &models.WashJob{Status: models.WashPending}
			}
			booking.Slots = append(booking.Slots, bs)
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}

		// 5. Seed the summary so it exists from the first read
		summary := ledger.Summarize(booking.ID, booking.TotalAmount, booking.Currency, nil)
		if err := s.paymentRepo.UpsertSummary(ctx, tx, &summary); err != nil {
			return err
		}

		if err := writeAudit(ctx, s.auditRepo, tx, auditRecord{
			entityType: models.AuditBooking,
			entityID:   booking.ID,
			to:         string(models.StatusPending),
			actorID:    actor.UserID,
			note:       "created",
			metadata:   map[string]any{"slot_ids": slotIDs, "total_amount": total},
		}); err != nil {
			return err
		}

		created, err := s.bookingRepo.FindByID(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, result.PropertyID)
	publish(ctx, s.publisher, "booking.created", bookingEvent(result))
	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor principal.Principal, bookingID uint, note string) (result *models.Booking, err error) {
	ctx, span := tracer.Start(ctx, "BookingService.CancelBooking")
	span.SetAttributes(attribute.Int64("booking.id", int64(bookingID)))
	defer func() { endSpan(span, err) }()

	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if booking.Status == models.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if booking.CustomerID != actor.UserID && !actor.IsStaff() {
			return ErrForbidden
		}
		if !booking.Status.CanTransitionTo(models.StatusCancelled) {
			return &TransitionError{Entity: models.AuditBooking, From: string(booking.Status), To: string(models.StatusCancelled)}
		}

		// Payments stay as they are: cancelling never refunds.
		if err := s.bookingRepo.UpdateStatus(ctx, tx, bookingID, models.StatusCancelled); err != nil {
			return err
		}
		if err := writeAudit(ctx, s.auditRepo, tx, auditRecord{
			entityType: models.AuditBooking,
			entityID:   bookingID,
			from:       string(booking.Status),
			to:         string(models.StatusCancelled),
			actorID:    actor.UserID,
			note:       note,
		}); err != nil {
			return err
		}

		cancelled, err := s.bookingRepo.FindByID(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		result = cancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	applyWashOverride(result)
	invalidate(ctx, s.cache, result.PropertyID)
	publish(ctx, s.publisher, "booking.cancelled", bookingEvent(result))
	return result, nil
}

// DeleteBooking hard-removes a booking nobody has paid anything towards yet.
// Past that point cancellation is the only way out.
func (s *bookingService) DeleteBooking(ctx context.Context, actor principal.Principal, bookingID uint) (err error) {
	ctx, span := tracer.Start(ctx, "BookingService.DeleteBooking")
	span.SetAttributes(attribute.Int64("booking.id", int64(bookingID)))
	defer func() { endSpan(span, err) }()

	var propertyID uint
	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if booking.CustomerID != actor.UserID && !actor.Can(principal.RoleAdmin) {
			return ErrForbidden
		}
		if booking.Status != models.StatusPending {
			return errors.Join(ErrInvalidOperation, errors.New("only pending bookings can be deleted"))
		}

		payments, err := s.paymentRepo.CountByBooking(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if payments > 0 {
			return errors.Join(ErrInvalidOperation, errors.New("booking has payments; cancel it instead"))
		}

		if err := s.bookingRepo.Delete(ctx, tx, bookingID); err != nil {
			return err
		}
		propertyID = booking.PropertyID
		return writeAudit(ctx, s.auditRepo, tx, auditRecord{
			entityType: models.AuditBooking,
			entityID:   bookingID,
			from:       string(booking.Status),
			actorID:    actor.UserID,
			note:       "deleted",
		})
	})
	if err != nil {
		return err
	}

	invalidate(ctx, s.cache, propertyID)
	publish(ctx, s.publisher, "booking.deleted", map[string]any{"booking_id": bookingID})
	return nil
}

// GetBooking is open to the owner, counter and admin staff, and washers,
// who need the slots behind their jobs.
func (s *bookingService) GetBooking(ctx context.Context, actor principal.Principal, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, s.bookingRepo.GetDB(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !canView(actor, booking, principal.RoleWasher) {
		return nil, ErrForbidden
	}
	applyWashOverride(booking)
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.List(ctx, s.bookingRepo.GetDB(), filter)
	if err != nil {
		return nil, err
	}
	for i := range bookings {
		applyWashOverride(&bookings[i])
	}
	return bookings, nil
}

func bookingEvent(b *models.Booking) map[string]any {
	slotIDs := make([]uint, 0, len(b.Slots))
	for _, s := range b.Slots {
		slotIDs = append(slotIDs, s.SlotID)
	}
	return map[string]any{
		"booking_id":   b.ID,
		"customer_id":  b.CustomerID,
		"property_id":  b.PropertyID,
		"slot_ids":     slotIDs,
		"start":        b.StartTime,
		"end":          b.EndTime,
		"status":       b.Status,
		"total_amount": b.TotalAmount,
		"currency":     b.Currency,
	}
}

func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
