package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type BulkItem struct {
	ID     uint              `json:"id"`
	Status models.WashStatus `json:"status"`
}

type BulkFailure struct {
	ID     uint   `json:"id"`
	Code   Kind   `json:"code"`
	Reason string `json:"reason"`
}

type BulkResult struct {
	Succeeded []BulkItem    `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

type WashJobService interface {
	Transition(ctx context.Context, actor principal.Principal, id uint, action models.WashAction) (*models.WashJob, error)
	BulkTransition(ctx context.Context, actor principal.Principal, ids []uint, action models.WashAction) (*BulkResult, error)
}

type washJobService struct {
	washJobRepo repository.WashJobRepository
	auditRepo   repository.AuditRepository
	publisher   EventPublisher
}

func NewWashJobService(washJobRepo repository.WashJobRepository, auditRepo repository.AuditRepository, publisher EventPublisher) WashJobService {
	return &washJobService{
		washJobRepo: washJobRepo,
		auditRepo:   auditRepo,
		publisher:   publisher,
	}
}

func canWash(actor principal.Principal) bool {
	return actor.Can(principal.RoleWasher | principal.RoleAdmin)
}

func (s *washJobService) Transition(ctx context.Context, actor principal.Principal, id uint, action models.WashAction) (*models.WashJob, error) {
	if !canWash(actor) {
		return nil, ErrForbidden
	}
	return s.transition(ctx, actor, id, action)
}

func (s *washJobService) transition(ctx context.Context, actor principal.Principal, id uint, action models.WashAction) (result *models.WashJob, err error) {
	ctx, span := tracer.Start(ctx, "WashJobService.Transition")
	span.SetAttributes(
		attribute.Int64("wash_job.id", int64(id)),
		attribute.String("wash_job.action", string(action)),
	)
	defer func() { endSpan(span, err) }()

	target := action.Target()
	if target == "" {
		return nil, fmt.Errorf("%w: unknown wash action %q", ErrInvalidInput, action)
	}

	var bookingID uint
	err = s.washJobRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := s.washJobRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWashJobNotFound
			}
			return err
		}
		parent, parentID, err := s.washJobRepo.FindParentStatus(ctx, tx, id)
		if err != nil {
			return err
		}

		// A job under a cancelled booking reads as CANCELLED, so it moves nowhere.
		current := job.EffectiveStatus(parent)
		if !current.CanTransitionTo(target) {
			return &TransitionError{Entity: models.AuditWashJob, From: string(current), To: string(target)}
		}

		if err := s.washJobRepo.UpdateStatus(ctx, tx, id, target, actor.UserID); err != nil {
			return err
		}
		if err := writeAudit(ctx, s.auditRepo, tx, auditRecord{
			entityType: models.AuditWashJob,
			entityID:   id,
			from:       string(current),
			to:         string(target),
			actorID:    actor.UserID,
			note:       string(action),
		}); err != nil {
			return err
		}

		job.Status = target
		job.UpdatedBy = actor.UserID
		bookingID = parentID
		result = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, "washjob."+strings.ToLower(string(target)), map[string]any{
		"wash_job_id": id,
		"booking_id":  bookingID,
		"status":      target,
		"actor_id":    actor.UserID,
	})
	return result, nil
}

// BulkTransition applies one action to many jobs, each in its own
// transaction. A failing item never undoes the others. The only error
// returned is for an actor who may not touch wash jobs at all.
func (s *washJobService) BulkTransition(ctx context.Context, actor principal.Principal, ids []uint, action models.WashAction) (*BulkResult, error) {
	if !canWash(actor) {
		return nil, ErrForbidden
	}

	res := &BulkResult{
		Succeeded: []BulkItem{},
		Failed:    []BulkFailure{},
	}
	for _, id := range ids {
		job, err := s.transition(ctx, actor, id, action)
		if err != nil {
			res.Failed = append(res.Failed, BulkFailure{ID: id, Code: KindOf(err), Reason: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, BulkItem{ID: id, Status: job.Status})
	}
	return res, nil
}
