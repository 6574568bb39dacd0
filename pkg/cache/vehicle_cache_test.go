package cache

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/grupomotriz/catalogo-backend/pkg/logger"
)

type fakeStore struct {
	values  map[string]string
	getErr  error
	setErr  error
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (s *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func testCache(store *fakeStore) *VehicleCache {
	return &VehicleCache{
		store: store,
		logg:  logger.New(logger.Options{ServiceName: "cache-test", Output: io.Discard}),
		ttl:   time.Minute,
	}
}

type detailPayload struct {
	Slug string `json:"slug"`
	Year int    `json:"year"`
}

func TestVehicleCacheRoundTrip(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	c := testCache(store)
	ctx := context.Background()
	id := uuid.New()

	var miss detailPayload
	if c.GetDetail(ctx, id, &miss) {
		t.Fatal("expected a miss before anything was stored")
	}

	c.SetDetail(ctx, id, detailPayload{Slug: "corolla-2025", Year: 2025})

	var hit detailPayload
	if !c.GetDetail(ctx, id, &hit) {
		t.Fatal("expected a hit after SetDetail")
	}
	if hit.Slug != "corolla-2025" || hit.Year != 2025 {
		t.Fatalf("unexpected cached payload: %+v", hit)
	}
}

func TestVehicleCacheInvalidateDropsEntries(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	c := testCache(store)
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	c.SetDetail(ctx, first, detailPayload{Slug: "a"})
	c.SetDetail(ctx, second, detailPayload{Slug: "b"})

	c.Invalidate(ctx, first, second)

	var out detailPayload
	if c.GetDetail(ctx, first, &out) || c.GetDetail(ctx, second, &out) {
		t.Fatal("expected both entries to be gone after invalidation")
	}
	if len(store.deleted) != 2 {
		t.Fatalf("expected 2 deleted keys, got %d", len(store.deleted))
	}
}

func TestVehicleCacheReadErrorIsAMiss(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.getErr = context.DeadlineExceeded
	c := testCache(store)

	var out detailPayload
	if c.GetDetail(context.Background(), uuid.New(), &out) {
		t.Fatal("redis errors must degrade to a miss")
	}
}

func TestVehicleCacheCorruptPayloadEvicted(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	c := testCache(store)
	ctx := context.Background()
	id := uuid.New()

	store.values[detailKey(id)] = "{not json"

	var out detailPayload
	if c.GetDetail(ctx, id, &out) {
		t.Fatal("corrupt payload must not hit")
	}
	if len(store.deleted) != 1 {
		t.Fatal("corrupt payload should be evicted")
	}
}
