package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HamzaSid020/MediVault/internal/models"
	"github.com/HamzaSid020/MediVault/internal/services"

	"github.com/redis/go-redis/v9"
)

// SelectionStore keeps pending download selections in Redis, one key per
// (user, document kind). The TTL bounds abandoned selections; within it the
// selection survives failed code attempts, matching the retry semantics.
type SelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSelectionStore creates a SelectionStore with the given selection lifetime.
func NewSelectionStore(client *redis.Client, ttl time.Duration) *SelectionStore {
	return &SelectionStore{client: client, ttl: ttl}
}

func selectionKey(userID string, kind models.DocumentKind) string {
	return fmt.Sprintf("selection:%s:%s", userID, kind)
}

// Put records a selection, replacing any pending one of the same kind.
func (s *SelectionStore) Put(ctx context.Context, userID string, kind models.DocumentKind, sel services.Selection) error {
	payload, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, selectionKey(userID, kind), payload, s.ttl).Err()
}

// Get returns the pending selection, or services.ErrNotFound when idle.
func (s *SelectionStore) Get(ctx context.Context, userID string, kind models.DocumentKind) (services.Selection, error) {
	payload, err := s.client.Get(ctx, selectionKey(userID, kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return services.Selection{}, services.ErrNotFound
	}
	if err != nil {
		return services.Selection{}, err
	}
	var sel services.Selection
	if err := json.Unmarshal(payload, &sel); err != nil {
		return services.Selection{}, err
	}
	return sel, nil
}

// Delete clears the pending selection. Deleting an idle key is a no-op.
func (s *SelectionStore) Delete(ctx context.Context, userID string, kind models.DocumentKind) error {
	return s.client.Del(ctx, selectionKey(userID, kind)).Err()
}
