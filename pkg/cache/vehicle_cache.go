package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/grupomotriz/catalogo-backend/pkg/logger"
	redisclient "github.com/grupomotriz/catalogo-backend/pkg/redis"
)

const defaultDetailTTL = 5 * time.Minute

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// VehicleCache keeps serialized vehicle detail responses in Redis, keyed by
// vehicle id. Every cache failure degrades to a miss; the database stays the
// source of truth.
type VehicleCache struct {
	store store
	logg  *logger.Logger
	ttl   time.Duration
}

// NewVehicleCache wraps the shared redis client. A non-positive ttl selects
// the default.
func NewVehicleCache(client *redisclient.Client, logg *logger.Logger, ttl time.Duration) (*VehicleCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if ttl <= 0 {
		ttl = defaultDetailTTL
	}
	return &VehicleCache{store: client, logg: logg, ttl: ttl}, nil
}

// GetDetail loads a cached detail payload into dest. False means miss, which
// covers redis errors and stale payloads that no longer unmarshal.
func (c *VehicleCache) GetDetail(ctx context.Context, vehicleID uuid.UUID, dest any) bool {
	key := detailKey(vehicleID)
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "vehicle cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		_ = c.store.Del(ctx, key)
		return false
	}
	return true
}

// SetDetail stores the detail payload. Best effort.
func (c *VehicleCache) SetDetail(ctx context.Context, vehicleID uuid.UUID, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	key := detailKey(vehicleID)
	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "vehicle cache write failed")
	}
}

// Invalidate drops the cached detail for the given vehicles. Mutations call
// this instead of rewriting entries so reads repopulate from the database.
func (c *VehicleCache) Invalidate(ctx context.Context, vehicleIDs ...uuid.UUID) {
	if len(vehicleIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(vehicleIDs))
	for _, id := range vehicleIDs {
		keys = append(keys, detailKey(id))
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		c.logg.Warn(ctx, "vehicle cache invalidation failed")
	}
}

func detailKey(vehicleID uuid.UUID) string {
	return redisclient.CacheKey("vehiculo", "detalle", vehicleID.String())
}
