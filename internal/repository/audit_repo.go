package repository

import (
	"context"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *models.AuditEntry) error
	ListByEntity(ctx context.Context, tx *gorm.DB, entityType string, entityID uint) ([]models.AuditEntry, error)
}

type auditRepository struct{}

func NewAuditRepository() AuditRepository {
	return &auditRepository{}
}

func (r *auditRepository) Append(ctx context.Context, tx *gorm.DB, entry *models.AuditEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) ListByEntity(ctx context.Context, tx *gorm.DB, entityType string, entityID uint) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := tx.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}
