package cache

import (
	"context"
	"testing"
	"time"
)

func TestStore_ExpiredReadIsMissAndEvicts(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	store.Set(ctx, Key("stats", "global"), 42)

	if got, ok := store.Get(ctx, "stats:global"); !ok || got != 42 {
		t.Fatalf("expected fresh hit, got=%v ok=%v", got, ok)
	}

	now = now.Add(time.Hour + time.Minute)
	if _, ok := store.Get(ctx, "stats:global"); ok {
		t.Fatal("expected expired entry to read as a miss")
	}

	store.mu.RLock()
	_, stillThere := store.entries["stats:global"]
	store.mu.RUnlock()
	if stillThere {
		t.Fatal("expected expired entry to be evicted on read")
	}
}

func TestStore_GetOrLoadCachesLoaderResult(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return "payload", nil
	}

	for i := 0; i < 3; i++ {
		got, err := store.GetOrLoad(ctx, Key("matches", "week", "0"), loader)
		if err != nil {
			t.Fatalf("GetOrLoad error: %v", err)
		}
		if got != "payload" {
			t.Fatalf("unexpected value: %v", got)
		}
	}

	if loads != 1 {
		t.Fatalf("expected loader to run once, ran %d times", loads)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Hour)
	ctx := context.Background()

	store.Set(ctx, "stats:user:u1", 1)
	store.Set(ctx, "stats:user:u2", 2)
	store.Set(ctx, "matches:week:0", 3)

	store.DeletePrefix(ctx, "stats:")

	if _, ok := store.Get(ctx, "stats:user:u1"); ok {
		t.Fatal("expected stats entries to be deleted")
	}
	if _, ok := store.Get(ctx, "matches:week:0"); !ok {
		t.Fatal("expected unrelated entry to survive")
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	if got := Key("stats"); got != "stats" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := Key("stats", "user", "abc"); got != "stats:user:abc" {
		t.Fatalf("unexpected key: %s", got)
	}
}
