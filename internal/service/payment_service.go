package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/gateway"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/ledger"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type RecordPaymentInput struct {
	BookingID uint
	Amount    int64
	Method    models.PaymentMethod
	CardToken string
}

type PaymentService interface {
	RecordPayment(ctx context.Context, actor principal.Principal, in RecordPaymentInput) (*models.PaymentSummary, error)
	GetPaymentSummary(ctx context.Context, actor principal.Principal, bookingID uint) (*models.PaymentSummary, error)
	ListPayments(ctx context.Context, actor principal.Principal, bookingID uint) ([]models.Payment, error)
}

type PaymentOptions struct {
	// LegacyCardMerge folds a repeat card payment into the booking's existing
	// PAID card row instead of inserting a new one.
	LegacyCardMerge bool
}

type paymentService struct {
	bookingRepo repository.BookingRepository
	paymentRepo repository.PaymentRepository
	auditRepo   repository.AuditRepository
	gateway     gateway.Gateway
	publisher   EventPublisher
	cache       AvailabilityCache
	opts        PaymentOptions
	now         func() time.Time
}

func NewPaymentService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	gw gateway.Gateway,
	publisher EventPublisher,
	cache AvailabilityCache,
	opts PaymentOptions,
) PaymentService {
	if gw == nil {
		gw = gateway.Disabled{}
	}
	return &paymentService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		gateway:     gw,
		publisher:   publisher,
		cache:       cache,
		opts:        opts,
		now:         time.Now,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, actor principal.Principal, in RecordPaymentInput) (result *models.PaymentSummary, err error) {
	ctx, span := tracer.Start(ctx, "PaymentService.RecordPayment")
	span.SetAttributes(
		attribute.Int64("booking.id", int64(in.BookingID)),
		attribute.String("payment.method", string(in.Method)),
		attribute.Int64("payment.amount", in.Amount),
	)
	defer func() { endSpan(span, err) }()

	if in.Method != models.MethodCard && in.Method != models.MethodCash {
		return nil, ErrInvalidMethod
	}

	var (
		payment    models.Payment
		becamePaid bool
		propertyID uint
	)
	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the booking so concurrent payments see each other's rows
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, in.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if booking.Status == models.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if in.Amount <= 0 {
			return ErrInvalidAmount
		}

		payments, err := s.paymentRepo.ListByBooking(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		before := ledger.Summarize(booking.ID, booking.TotalAmount, booking.Currency, payments)
		if ledger.Settled(before) {
			return ErrAlreadySettled
		}
		if in.Amount > before.BalanceDue {
			return fmt.Errorf("%w: amount %d exceeds balance due %d", ErrInvalidAmount, in.Amount, before.BalanceDue)
		}

		if err := authorizePayment(actor, booking, in.Method); err != nil {
			return err
		}

		// 2. Card money moves before anything is written; a decline rolls back
		payment = models.Payment{
			BookingID: booking.ID,
			Amount:    in.Amount,
			Currency:  booking.Currency,
			Method:    in.Method,
			Status:    models.PaymentPaid,
			Reference: uuid.NewString(),
			PaidAt:    s.now().UTC(),
		}
		if in.Method == models.MethodCard {
			res, err := s.gateway.Charge(ctx, gateway.ChargeRequest{
				BookingID:      booking.ID,
				Amount:         in.Amount,
				Currency:       booking.Currency,
				CardToken:      in.CardToken,
				IdempotencyKey: payment.Reference,
			})
			if err != nil {
				return fmt.Errorf("%w: %v", ErrGatewayDeclined, err)
			}
			payment.GatewayTxnID = &res.TransactionID
			if !res.SettledAt.IsZero() {
				payment.PaidAt = res.SettledAt.UTC()
			}
		}

		// 3. Insert, or merge into the old card row when the shim is on
		merged := false
		if s.opts.LegacyCardMerge && in.Method == models.MethodCard {
			existing, err := s.paymentRepo.FindPaidCard(ctx, tx, booking.ID)
			switch {
			case err == nil:
				if err := s.paymentRepo.AddAmount(ctx, tx, existing.ID, in.Amount, payment.PaidAt); err != nil {
					return err
				}
				if err := writeAudit(ctx, s.auditRepo, tx, auditRecord{
					entityType: models.AuditPayment,
					entityID:   existing.ID,
					from:       string(models.PaymentPaid),
					to:         string(models.PaymentPaid),
					actorID:    actor.UserID,
					note:       "card payment merged",
					metadata: map[string]any{
						"gateway_txn_id": *payment.GatewayTxnID,
						"reference":      payment.Reference,
						"amount":         in.Amount,
					},
				}); err != nil {
					return err
				}
				payment.ID = existing.ID
				payment.GatewayTxnID = existing.GatewayTxnID
				payment.Reference = existing.Reference
				payment.Amount = existing.Amount + in.Amount
				merged = true
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		if !merged {
			if err := s.paymentRepo.Create(ctx, tx, &payment); err != nil {
				return err
			}
		}

		// 4. Summary is rebuilt from the full payment set every time
		payments, err = s.paymentRepo.ListByBooking(ctx, tx, booking.ID)
		if err != nil {
			return err
		}
		summary := ledger.Summarize(booking.ID, booking.TotalAmount, booking.Currency, payments)
		if err := s.paymentRepo.UpsertSummary(ctx, tx, &summary); err != nil {
			return err
		}

		if ledger.Settled(summary) && booking.Status == models.StatusPending {
			if err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.StatusPaid); err != nil {
				return err
			}
			if err := writeAudit(ctx, s.auditRepo, tx, auditRecord{
				entityType: models.AuditBooking,
				entityID:   booking.ID,
				from:       string(booking.Status),
				to:         string(models.StatusPaid),
				actorID:    actor.UserID,
				note:       "balance settled",
				metadata: map[string]any{
					"online_paid": summary.OnlinePaid,
					"cash_paid":   summary.CashPaid,
				},
			}); err != nil {
				return err
			}
			becamePaid = true
		}

		propertyID = booking.PropertyID
		result = &summary
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrGatewayDeclined) {
			logger.Log.Warn("[payments] card charge declined", "booking_id", in.BookingID, "error", err)
		}
		return nil, err
	}

	publish(ctx, s.publisher, "payment.recorded", map[string]any{
		"booking_id": in.BookingID,
		"payment_id": payment.ID,
		"reference":  payment.Reference,
		"method":     payment.Method,
		"amount":     in.Amount,
		"currency":   payment.Currency,
		"balance":    result.BalanceDue,
	})
	if becamePaid {
		invalidate(ctx, s.cache, propertyID)
		publish(ctx, s.publisher, "booking.paid", map[string]any{
			"booking_id":   in.BookingID,
			"total_amount": result.TotalAmount,
			"online_paid":  result.OnlinePaid,
			"cash_paid":    result.CashPaid,
		})
	}
	return result, nil
}

// Cash is taken at the counter only. Cards can be paid by the booking's
// owner or by staff on their behalf.
func authorizePayment(actor principal.Principal, booking *models.Booking, method models.PaymentMethod) error {
	switch method {
	case models.MethodCash:
		if !actor.IsStaff() {
			return fmt.Errorf("%w: cash payments are recorded by counter staff", ErrForbidden)
		}
	case models.MethodCard:
		if booking.CustomerID != actor.UserID && !actor.IsStaff() {
			return ErrForbidden
		}
	}
	return nil
}

func (s *paymentService) GetPaymentSummary(ctx context.Context, actor principal.Principal, bookingID uint) (*models.PaymentSummary, error) {
	db := s.paymentRepo.GetDB()
	booking, err := s.viewableBooking(ctx, db, actor, bookingID)
	if err != nil {
		return nil, err
	}

	summary, err := s.paymentRepo.FindSummary(ctx, db, bookingID)
	if err == nil {
		return summary, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// No row yet: fold it from the booking and its payments.
	payments, err := s.paymentRepo.ListByBooking(ctx, db, bookingID)
	if err != nil {
		return nil, err
	}
	recomputed := ledger.Summarize(booking.ID, booking.TotalAmount, booking.Currency, payments)
	return &recomputed, nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor principal.Principal, bookingID uint) ([]models.Payment, error) {
	db := s.paymentRepo.GetDB()
	if _, err := s.viewableBooking(ctx, db, actor, bookingID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByBooking(ctx, db, bookingID)
}

// viewableBooking loads the booking for a payment read. Money is shown to
// the owner and to counter or admin staff only.
func (s *paymentService) viewableBooking(ctx context.Context, db *gorm.DB, actor principal.Principal, bookingID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, db, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !canView(actor, booking, 0) {
		return nil, ErrForbidden
	}
	return booking, nil
}
