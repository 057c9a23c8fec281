package repository

import (
	"context"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingFilter struct {
	CustomerID string
	PropertyID uint
	Status     *models.BookingStatus
}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindOccupiedSlotIDs(ctx context.Context, tx *gorm.DB, propertyID uint, slotIDs []uint, start, end time.Time) ([]uint, error)
	List(ctx context.Context, tx *gorm.DB, filter BookingFilter) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error
	Delete(ctx context.Context, tx *gorm.DB, bookingID uint) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

// Create inserts the booking together with its BookingSlots and any WashJobs
// hanging off them.
func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB { return db.Order("booking_slots.id ASC") }).
		Preload("Slots.Slot").
		Preload("Slots.WashJob").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate acquires a row-level lock on the booking within the given transaction.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindOccupiedSlotIDs returns the slots held by non-cancelled bookings of the
// property whose window overlaps [start,end). A nil slotIDs means every slot.
// The result may contain duplicates.
func (r *bookingRepository) FindOccupiedSlotIDs(ctx context.Context, tx *gorm.DB, propertyID uint, slotIDs []uint, start, end time.Time) ([]uint, error) {
	q := tx.WithContext(ctx).
		Model(&models.BookingSlot{}).
		Joins("JOIN bookings ON bookings.id = booking_slots.booking_id").
		Where("bookings.property_id = ? AND bookings.status <> ?", propertyID, models.StatusCancelled).
		Where("bookings.start_time < ? AND bookings.end_time > ?", end, start)
	if slotIDs != nil {
		q = q.Where("booking_slots.slot_id IN ?", slotIDs)
	}

	var ids []uint
	if err := q.Pluck("booking_slots.slot_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *bookingRepository) List(ctx context.Context, tx *gorm.DB, filter BookingFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	q := tx.WithContext(ctx).
		Preload("Slots").
		Preload("Slots.WashJob")
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.PropertyID != 0 {
		q = q.Where("property_id = ?", filter.PropertyID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if err := q.Order("start_time ASC, id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}

// Delete physically removes a booking and everything hanging off it.
func (r *bookingRepository) Delete(ctx context.Context, tx *gorm.DB, bookingID uint) error {
	db := tx.WithContext(ctx)

	slotIDs := db.Model(&models.BookingSlot{}).Select("id").Where("booking_id = ?", bookingID)
	if err := db.Where("booking_slot_id IN (?)", slotIDs).Delete(&models.WashJob{}).Error; err != nil {
		return err
	}
	if err := db.Where("booking_id = ?", bookingID).Delete(&models.BookingSlot{}).Error; err != nil {
		return err
	}
	if err := db.Where("booking_id = ?", bookingID).Delete(&models.PaymentSummary{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Booking{}, bookingID).Error
}
