package repository

import (
	"pyland_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(log *model.NotificationLog) error {
	return r.DB.Create(log).Error
}

func (r *NotificationRepository) MarkSent(id uint) error {
	now := time.Now()
	return r.DB.Model(&model.NotificationLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.NotificationSent, "sent_at": &now}).
		Error
}

func (r *NotificationRepository) MarkFailed(id uint, reason string) error {
	if len(reason) > 500 {
		reason = reason[:500]
	}
	return r.DB.Model(&model.NotificationLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.NotificationFailed, "error": reason}).
		Error
}

func (r *NotificationRepository) CountByStatus(status model.NotificationStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.NotificationLog{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *NotificationRepository) List(page, limit int) ([]model.NotificationLog, int64, error) {
	var logs []model.NotificationLog
	var total int64

	if err := r.DB.Model(&model.NotificationLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.DB.Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	return logs, total, err
}
