package repository

import (
	"context"

	"teamtodo-backend/internal/notification/domain"

	"gorm.io/gorm"
)

// DeliveryLogRepository stores push delivery audit rows
type DeliveryLogRepository interface {
	Create(ctx context.Context, entry *domain.DeliveryLog) error
	FindByTask(ctx context.Context, projectID, taskID string, limit int) ([]*domain.DeliveryLog, error)
}

// gormDeliveryLogRepository implements DeliveryLogRepository using GORM
type gormDeliveryLogRepository struct {
	db *gorm.DB
}

// NewGormDeliveryLogRepository creates a new GORM-based DeliveryLogRepository
func NewGormDeliveryLogRepository(db *gorm.DB) DeliveryLogRepository {
	return &gormDeliveryLogRepository{db: db}
}

func (r *gormDeliveryLogRepository) Create(ctx context.Context, entry *domain.DeliveryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormDeliveryLogRepository) FindByTask(ctx context.Context, projectID, taskID string, limit int) ([]*domain.DeliveryLog, error) {
	var logs []*domain.DeliveryLog
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND task_id = ?", projectID, taskID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
