package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSlotOwnedElsewhere means an upsert named a slot id that already belongs
// to a different property.
var ErrSlotOwnedElsewhere = errors.New("slot belongs to another property")

type PropertyRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Property, error)
	FindSlots(ctx context.Context, tx *gorm.DB, propertyID uint) ([]models.Slot, error)
	FindSlotByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Slot, error)
	LockSlots(ctx context.Context, tx *gorm.DB, propertyID uint, slotIDs []uint) ([]models.Slot, error)
	UpdateSlotActive(ctx context.Context, tx *gorm.DB, slotID uint, active bool) error
	Upsert(ctx context.Context, tx *gorm.DB, property *models.Property) error
	GetDB() *gorm.DB
}

type propertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *propertyRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Property, error) {
	var property models.Property
	if err := tx.WithContext(ctx).First(&property, id).Error; err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) FindSlots(ctx context.Context, tx *gorm.DB, propertyID uint) ([]models.Slot, error) {
	var slots []models.Slot
	err := tx.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *propertyRepository) FindSlotByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Slot, error) {
	var slot models.Slot
	if err := tx.WithContext(ctx).First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// LockSlots takes row locks on the requested slots of a property in id order,
// so concurrent bookings touching the same slots queue up instead of
// deadlocking. Slots of other properties are simply not returned.
func (r *propertyRepository) LockSlots(ctx context.Context, tx *gorm.DB, propertyID uint, slotIDs []uint) ([]models.Slot, error) {
	var slots []models.Slot
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("property_id = ? AND id IN ?", propertyID, slotIDs).
		Order("id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *propertyRepository) UpdateSlotActive(ctx context.Context, tx *gorm.DB, slotID uint, active bool) error {
	res := tx.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ?", slotID).
		Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Upsert writes a property and its slots as received from the catalog.
// A slot's type is set on insert and never overwritten.
func (r *propertyRepository) Upsert(ctx context.Context, tx *gorm.DB, property *models.Property) error {
	slots := property.Slots

	err := tx.WithContext(ctx).
		Omit("Slots").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "address", "hourly_rate", "ev_hourly_rate", "wash_hourly_rate",
				"daily_rate", "service_fee", "currency", "active", "updated_at",
			}),
		}).
		Create(property).Error
	if err != nil {
		return err
	}

	if len(slots) > 0 {
		ids := make([]uint, len(slots))
		for i := range slots {
			ids[i] = slots[i].ID
		}
		var foreign []uint
		err := tx.WithContext(ctx).
			Model(&models.Slot{}).
			Where("id IN ? AND property_id <> ?", ids, property.ID).
			Pluck("id", &foreign).Error
		if err != nil {
			return err
		}
		if len(foreign) > 0 {
			return fmt.Errorf("%w: slots %v", ErrSlotOwnedElsewhere, foreign)
		}
	}

	for i := range slots {
		slots[i].PropertyID = property.ID
		err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"number", "active", "updated_at"}),
			}).
			Create(&slots[i]).Error
		if err != nil {
			return err
		}
	}
	property.Slots = slots
	return nil
}
