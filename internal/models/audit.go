package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AuditBooking = "booking"
	AuditWashJob = "wash_job"
	AuditPayment = "payment"
)

// AuditEntry is append-only; nothing reads it back into a decision.
type AuditEntry struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	EntityType string            `gorm:"type:varchar(20);not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   uint              `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	FromStatus string            `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   string            `gorm:"type:varchar(20)" json:"to_status"`
	ActorID    string            `gorm:"not null" json:"actor_id"`
	Note       string            `json:"note,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
