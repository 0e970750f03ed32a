package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/intake-service/internal/domain"
)

const permissionKeyPrefix = "perm:"

// PermissionCache keeps per-user permission lists in Redis across requests.
// A per-request memo in the authorization gate deduplicates lookups inside
// one request; this layer bounds backend load across requests.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache constructs the cache.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &PermissionCache{client: client, ttl: ttl}
}

// Get returns the cached permission list, or found=false on a miss. Errors
// are returned to the caller, which treats them as a miss or a denial
// depending on policy.
func (c *PermissionCache) Get(ctx context.Context, userID string) ([]domain.Permission, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, permissionKeyPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var permissions []domain.Permission
	if err := json.Unmarshal(raw, &permissions); err != nil {
		return nil, false, err
	}
	return permissions, true, nil
}

// Set stores a permission list with the configured TTL.
func (c *PermissionCache) Set(ctx context.Context, userID string, permissions []domain.Permission) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(permissions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, permissionKeyPrefix+userID, raw, c.ttl).Err()
}

// Invalidate drops the cached list after a grant change.
func (c *PermissionCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, permissionKeyPrefix+userID).Err()
}
