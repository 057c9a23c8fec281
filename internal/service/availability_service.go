package service

import (
	"context"
	"errors"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type SlotAvailability struct {
	SlotID uint             `json:"slot_id"`
	Number string           `json:"number"`
	Type   models.SlotType  `json:"type"`
	State  models.SlotState `json:"state"`
}

type AvailabilityService interface {
	FindOccupiedSlots(ctx context.Context, propertyID uint, start, end time.Time) (map[uint]struct{}, error)
	GetAvailability(ctx context.Context, propertyID uint, start, end time.Time) ([]SlotAvailability, error)
	SetSlotActive(ctx context.Context, actor principal.Principal, slotID uint, active bool) (*models.Slot, error)
}

type availabilityService struct {
	propertyRepo repository.PropertyRepository
	bookingRepo  repository.BookingRepository
	cache        AvailabilityCache
}

func NewAvailabilityService(propertyRepo repository.PropertyRepository, bookingRepo repository.BookingRepository, cache AvailabilityCache) AvailabilityService {
	return &availabilityService{
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		cache:        cache,
	}
}

func (s *availabilityService) FindOccupiedSlots(ctx context.Context, propertyID uint, start, end time.Time) (map[uint]struct{}, error) {
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}
	ids, err := s.bookingRepo.FindOccupiedSlotIDs(ctx, s.bookingRepo.GetDB(), propertyID, nil, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	occupied := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		occupied[id] = struct{}{}
	}
	return occupied, nil
}

// GetAvailability reports every slot of the property for the window. An
// unknown property has no slots, which is not an error.
func (s *availabilityService) GetAvailability(ctx context.Context, propertyID uint, start, end time.Time) (result []SlotAvailability, err error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.GetAvailability")
	span.SetAttributes(attribute.Int64("property.id", int64(propertyID)))
	defer func() { endSpan(span, err) }()

	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}
	start, end = start.UTC(), end.UTC()

	var (
		version  int64
		writable bool
	)
	if s.cache != nil {
		var cached []SlotAvailability
		v, hit, cerr := s.cache.Get(ctx, propertyID, start, end, &cached)
		if cerr != nil {
			logger.Log.Warn("[cache] availability read failed", "property_id", propertyID, "error", cerr)
		} else if hit {
			return cached, nil
		} else {
			version, writable = v, true
		}
	}

	db := s.propertyRepo.GetDB()
	if _, err := s.propertyRepo.FindByID(ctx, db, propertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []SlotAvailability{}, nil
		}
		return nil, err
	}

	slots, err := s.propertyRepo.FindSlots(ctx, db, propertyID)
	if err != nil {
		return nil, err
	}
	occupied, err := s.FindOccupiedSlots(ctx, propertyID, start, end)
	if err != nil {
		return nil, err
	}

	result = make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		state := models.SlotAvailable
		switch {
		case !slot.Active:
			state = models.SlotMaintenance
		case has(occupied, slot.ID):
			state = models.SlotOccupied
		}
		result = append(result, SlotAvailability{
			SlotID: slot.ID,
			Number: slot.Number,
			Type:   slot.Type,
			State:  state,
		})
	}

	if writable {
		if cerr := s.cache.Set(ctx, propertyID, version, start, end, result); cerr != nil {
			logger.Log.Warn("[cache] availability write failed", "property_id", propertyID, "error", cerr)
		}
	}
	return result, nil
}

// SetSlotActive puts a slot into or out of maintenance.
func (s *availabilityService) SetSlotActive(ctx context.Context, actor principal.Principal, slotID uint, active bool) (*models.Slot, error) {
	if !actor.Can(principal.RoleAdmin | principal.RoleLandOwner) {
		return nil, ErrForbidden
	}

	var result *models.Slot
	err := s.propertyRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.propertyRepo.UpdateSlotActive(ctx, tx, slotID, active); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		slot, err := s.propertyRepo.FindSlotByID(ctx, tx, slotID)
		if err != nil {
			return err
		}
		result = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("[slots] maintenance toggled", "slot_id", slotID, "active", active, "actor", actor.UserID)
	invalidate(ctx, s.cache, result.PropertyID)
	return result, nil
}

func has(set map[uint]struct{}, id uint) bool {
	_, ok := set[id]
	return ok
}
