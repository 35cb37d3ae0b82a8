package services

import (
	"context"

	"github.com/HamzaSid020/MediVault/internal/models"

	"github.com/rs/zerolog"
)

// NotificationRepository persists per-entity notification logs. List must
// return entries in insertion order.
type NotificationRepository interface {
	Append(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	Update(ctx context.Context, n *models.Notification) error
	ListByOwner(ctx context.Context, owner models.OwnerType, ownerID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, owner models.OwnerType, ownerID string) (int64, error)
}

// NotificationService owns all mutation of notification logs; nothing else
// touches the entries directly.
type NotificationService struct {
	repo NotificationRepository
	log  zerolog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(repo NotificationRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// Notify appends one unread entry to the owner's log. It is best-effort: a
// store failure is logged and swallowed so it can never fail the primary
// mutation it rides along with.
func (s *NotificationService) Notify(ctx context.Context, owner models.OwnerType, ownerID, message string) {
	if ownerID == "" || message == "" {
		return
	}
	n := &models.Notification{
		OwnerType: owner,
		OwnerID:   ownerID,
		Message:   message,
	}
	if err := s.repo.Append(ctx, n); err != nil {
		s.log.Warn().Err(err).
			Str("owner_type", string(owner)).
			Str("owner_id", ownerID).
			Msg("notification append failed")
	}
}

// MarkRead flips one entry in the owner's log to read. Entries belonging to
// a different owner are not visible, so those report ErrNotFound too.
func (s *NotificationService) MarkRead(ctx context.Context, owner models.OwnerType, ownerID, notificationID string) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.OwnerType != owner || n.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	if n.Read {
		return n, nil
	}
	n.Read = true
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the owner's notification log in insertion order.
func (s *NotificationService) List(ctx context.Context, owner models.OwnerType, ownerID string) ([]models.Notification, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, owner, ownerID)
}

// UnreadCount derives the number of unread entries; it is never stored.
func (s *NotificationService) UnreadCount(ctx context.Context, owner models.OwnerType, ownerID string) (int64, error) {
	if ownerID == "" {
		return 0, ErrInvalidInput
	}
	return s.repo.CountUnread(ctx, owner, ownerID)
}
