package service

import (
	"context"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/service")

// EventPublisher ships domain events after the transaction that caused them
// has committed. A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AvailabilityCache is the read-through cache behind GetAvailability.
type AvailabilityCache interface {
	// Get reports the snapshot version it looked at; Set must be given
	// that same version.
	Get(ctx context.Context, propertyID uint, start, end time.Time, dst any) (version int64, hit bool, err error)
	Set(ctx context.Context, propertyID uint, version int64, start, end time.Time, v any) error
	Invalidate(ctx context.Context, propertyID uint) error
}

func publish(ctx context.Context, pub EventPublisher, key string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, key, payload); err != nil {
		logger.Log.Warn("[events] publish failed", "routing_key", key, "error", err)
	}
}

func invalidate(ctx context.Context, c AvailabilityCache, propertyID uint) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, propertyID); err != nil {
		logger.Log.Warn("[cache] invalidate failed", "property_id", propertyID, "error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

type auditRecord struct {
	entityType string
	entityID   uint
	from       string
	to         string
	actorID    string
	note       string
	metadata   map[string]any
}

func writeAudit(ctx context.Context, repo repository.AuditRepository, tx *gorm.DB, rec auditRecord) error {
	entry := &models.AuditEntry{
		EntityType: rec.entityType,
		EntityID:   rec.entityID,
		FromStatus: rec.from,
		ToStatus:   rec.to,
		ActorID:    rec.actorID,
		Note:       rec.note,
	}
	if len(rec.metadata) > 0 {
		entry.Metadata = datatypes.JSONMap(rec.metadata)
	}
	if err := repo.Append(ctx, tx, entry); err != nil {
		return err
	}
	logger.Log.Info("[audit] status change",
		"entity", rec.entityType, "id", rec.entityID,
		"from", rec.from, "to", rec.to, "actor", rec.actorID)
	return nil
}

// applyWashOverride rewrites each wash job's status to what readers must see
// given the booking's own status.
func applyWashOverride(b *models.Booking) {
	for i := range b.Slots {
		if job := b.Slots[i].WashJob; job != nil {
			job.Status = job.EffectiveStatus(b.Status)
		}
	}
}

// canView reports whether actor may read booking b: its owner, counter or
// admin staff, or anyone holding one of the extra roles.
func canView(actor principal.Principal, b *models.Booking, extra principal.Role) bool {
	if actor.UserID != "" && b.CustomerID == actor.UserID {
		return true
	}
	return actor.IsStaff() || (extra != 0 && actor.Can(extra))
}
