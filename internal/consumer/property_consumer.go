package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
)

// Invalidator drops cached availability for a property.
type Invalidator interface {
	Invalidate(ctx context.Context, propertyID uint) error
}

// PropertyConsumer keeps the local copy of the property catalog in sync with
// the catalog service.
type PropertyConsumer struct {
	repo            repository.PropertyRepository
	cache           Invalidator
	defaultCurrency string
}

func NewPropertyConsumer(repo repository.PropertyRepository, cache Invalidator, defaultCurrency string) *PropertyConsumer {
	return &PropertyConsumer{repo: repo, cache: cache, defaultCurrency: defaultCurrency}
}

// Start listens for messages and upserts properties into the local DB.
func (pc *PropertyConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			pc.handleMessage(ctx, msg)
		}
		logger.Log.Info("[PropertyConsumer] channel closed, stopping consumer")
	}()
}

func (pc *PropertyConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var m propertyMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		logger.Log.Error("[PropertyConsumer] failed to unmarshal", "error", err)
		msg.Nack(false, false)
		return
	}
	property, err := m.toProperty(pc.defaultCurrency)
	if err != nil {
		logger.Log.Error("[PropertyConsumer] rejected message", "routing_key", msg.RoutingKey, "error", err)
		msg.Nack(false, false)
		return
	}

	err = pc.repo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return pc.repo.Upsert(ctx, tx, property)
	})
	if errors.Is(err, repository.ErrSlotOwnedElsewhere) {
		logger.Log.Error("[PropertyConsumer] rejected message", "property_id", property.ID, "error", err)
		msg.Nack(false, false)
		return
	}
	if err != nil {
		logger.Log.Error("[PropertyConsumer] failed to upsert property", "property_id", property.ID, "error", err)
		msg.Nack(false, true) // requeue
		return
	}

	if pc.cache != nil {
		if err := pc.cache.Invalidate(ctx, property.ID); err != nil {
			logger.Log.Warn("[PropertyConsumer] cache invalidate failed", "property_id", property.ID, "error", err)
		}
	}

	logger.Log.Info("[PropertyConsumer] synced property", "property_id", property.ID, "name", property.Name, "slots", len(property.Slots))
	msg.Ack(false)
}
