package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCacheManager(client), mr
}

func TestCacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	load := func() (interface{}, error) {
		calls++
		return map[string]int{"observation_count": 4}, nil
	}

	var got map[string]int
	if err := cm.Stats.CacheOrExecute(ctx, "workshop:1:stats", &got, time.Minute, load); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if got["observation_count"] != 4 {
		t.Errorf("observation_count = %d, want 4", got["observation_count"])
	}

	// second read is served from cache
	var again map[string]int
	if err := cm.Stats.CacheOrExecute(ctx, "workshop:1:stats", &again, time.Minute, load); err != nil {
		t.Fatalf("cached CacheOrExecute failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
}

func TestCacheOrExecute_LoaderError(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	wantErr := errors.New("boom")
	var dest map[string]int
	err := cm.Stats.CacheOrExecute(ctx, "workshop:1:stats", &dest, time.Minute, func() (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

// An observation write invalidates the stats of its workshop only; cached
// stats of other workshops must survive.
func TestInvalidatePattern_ScopedToWorkshop(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	if err := cm.Stats.Set(ctx, "workshop:1:stats", map[string]int{"observation_count": 4}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cm.Stats.Set(ctx, "workshop:2:stats", map[string]int{"observation_count": 9}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	SafeInvalidatePattern(ctx, cm.Stats, "workshop:1:*")

	if mr.Exists("stats:workshop:1:stats") {
		t.Error("stats for workshop 1 still cached after invalidation")
	}
	if !mr.Exists("stats:workshop:2:stats") {
		t.Error("stats for workshop 2 were invalidated")
	}

	var kept map[string]int
	if err := cm.Stats.Get(ctx, "workshop:2:stats", &kept); err != nil {
		t.Fatalf("Get after invalidation failed: %v", err)
	}
	if kept["observation_count"] != 9 {
		t.Errorf("observation_count = %d, want 9", kept["observation_count"])
	}
}
