package repository

import (
	"context"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WashJobRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.WashJob, error)
	FindParentStatus(ctx context.Context, tx *gorm.DB, washJobID uint) (models.BookingStatus, uint, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.WashStatus, actorID string) error
	GetDB() *gorm.DB
}

type washJobRepository struct {
	db *gorm.DB
}

func NewWashJobRepository(db *gorm.DB) WashJobRepository {
	return &washJobRepository{db: db}
}

func (r *washJobRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *washJobRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.WashJob, error) {
	var job models.WashJob
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindParentStatus returns the status and id of the booking owning a wash job.
func (r *washJobRepository) FindParentStatus(ctx context.Context, tx *gorm.DB, washJobID uint) (models.BookingStatus, uint, error) {
	var row struct {
		ID     uint
		Status models.BookingStatus
	}
	err := tx.WithContext(ctx).
		Table("bookings").
		Select("bookings.id, bookings.status").
		Joins("JOIN booking_slots ON booking_slots.booking_id = bookings.id").
		Joins("JOIN wash_jobs ON wash_jobs.booking_slot_id = booking_slots.id").
		Where("wash_jobs.id = ?", washJobID).
		Take(&row).Error
	if err != nil {
		return "", 0, err
	}
	return row.Status, row.ID, nil
}

func (r *washJobRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.WashStatus, actorID string) error {
	return tx.WithContext(ctx).
		Model(&models.WashJob{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_by": actorID}).Error
}
