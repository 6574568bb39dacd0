package redis

import (
	"testing"

	"github.com/grupomotriz/catalogo-backend/pkg/config"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	t.Parallel()

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address set")
	}
}

func TestOptionsFromConfigURLWins(t *testing.T) {
	t.Parallel()

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:     "redis://:pw@redis.internal:6380/2",
		Address: "ignored:1",
	})
	if err != nil {
		t.Fatalf("optionsFromConfig: %v", err)
	}
	if opts.Addr != "redis.internal:6380" {
		t.Fatalf("unexpected addr %s", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
}

func TestKeyBuilders(t *testing.T) {
	t.Parallel()

	if got := CacheKey("vehicle", "abc"); got != "catalogo:cache:vehicle:abc" {
		t.Fatalf("unexpected cache key %s", got)
	}
	if got := LockKey("cron"); got != "catalogo:lock:cron" {
		t.Fatalf("unexpected lock key %s", got)
	}
}
