package store

import (
	"context"
	"errors"

	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"

	"gorm.io/gorm"
)

// NotificationStore is the gorm-backed services.NotificationRepository.
type NotificationStore struct {
	DB *gorm.DB
}

// NewNotificationStore creates a NotificationStore.
func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{DB: db}
}

// Append inserts one log entry.
func (s *NotificationStore) Append(ctx context.Context, n *models.Notification) error {
	return s.DB.WithContext(ctx).Create(n).Error
}

// GetByID fetches one entry.
func (s *NotificationStore) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.DB.WithContext(ctx).First(&n, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Update saves a modified entry.
func (s *NotificationStore) Update(ctx context.Context, n *models.Notification) error {
	return s.DB.WithContext(ctx).Save(n).Error
}

// ListByOwner returns the owner's log in insertion order.
func (s *NotificationStore) ListByOwner(ctx context.Context, owner models.OwnerType, ownerID string) ([]models.Notification, error) {
	var list []models.Notification
	err := s.DB.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", owner, ownerID).
		Order("created_at asc").
		Find(&list).Error
	return list, err
}

// CountUnread counts the owner's unread entries.
func (s *NotificationStore) CountUnread(ctx context.Context, owner models.OwnerType, ownerID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("owner_type = ? AND owner_id = ? AND `read` = ?", owner, ownerID, false).
		Count(&n).Error
	return n, err
}
