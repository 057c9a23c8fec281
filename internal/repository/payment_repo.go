package repository

import (
	"context"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	ListByBooking(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.Payment, error)
	CountByBooking(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error)
	FindPaidCard(ctx context.Context, tx *gorm.DB, bookingID uint) (*models.Payment, error)
	// AddAmount grows a merged card row. Its gateway_txn_id stays the first
	// charge's; later charge ids belong in the audit trail.
	AddAmount(ctx context.Context, tx *gorm.DB, paymentID uint, delta int64, paidAt time.Time) error
	FindSummary(ctx context.Context, tx *gorm.DB, bookingID uint) (*models.PaymentSummary, error)
	UpsertSummary(ctx context.Context, tx *gorm.DB, summary *models.PaymentSummary) error
	GetDB() *gorm.DB
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) ListByBooking(ctx context.Context, tx *gorm.DB, bookingID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := tx.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) CountByBooking(ctx context.Context, tx *gorm.DB, bookingID uint) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Payment{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error
	return count, err
}

// FindPaidCard returns the oldest settled card payment of a booking.
func (r *paymentRepository) FindPaidCard(ctx context.Context, tx *gorm.DB, bookingID uint) (*models.Payment, error) {
	var payment models.Payment
	err := tx.WithContext(ctx).
		Where("booking_id = ? AND method = ? AND status = ?", bookingID, models.MethodCard, models.PaymentPaid).
		Order("id ASC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) AddAmount(ctx context.Context, tx *gorm.DB, paymentID uint, delta int64, paidAt time.Time) error {
	return tx.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]any{
			"amount":  gorm.Expr("amount + ?", delta),
			"paid_at": paidAt,
		}).Error
}

func (r *paymentRepository) FindSummary(ctx context.Context, tx *gorm.DB, bookingID uint) (*models.PaymentSummary, error) {
	var summary models.PaymentSummary
	if err := tx.WithContext(ctx).First(&summary, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// UpsertSummary replaces the summary row wholesale.
func (r *paymentRepository) UpsertSummary(ctx context.Context, tx *gorm.DB, summary *models.PaymentSummary) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "booking_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_amount", "online_paid", "cash_paid", "balance_due", "currency", "updated_at",
			}),
		}).
		Create(summary).Error
}
