package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestLimiter creates a Limiter connected to a test Redis instance.
// Requires Redis running on localhost:6379. Tests are skipped if unavailable.
func setupTestLimiter(t *testing.T) (*Limiter, context.Context) {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid conflicts
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("skipping: Redis not available: %v", err)
	}

	rdb.FlushDB(ctx)

	t.Cleanup(func() {
		rdb.FlushDB(ctx)
		rdb.Close()
	})

	return NewLimiter(rdb), ctx
}

func TestAllow_UnderLimit(t *testing.T) {
	l, ctx := setupTestLimiter(t)
	rule := Rule{Key: "rl:test:", Limit: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		allowed, err := l.Allow(ctx, "conn-1", rule)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestAllow_OverLimitBlocks(t *testing.T) {
	l, ctx := setupTestLimiter(t)
	rule := Rule{Key: "rl:test:", Limit: 2, Window: time.Minute}

	l.Allow(ctx, "conn-1", rule)
	l.Allow(ctx, "conn-1", rule)

	allowed, err := l.Allow(ctx, "conn-1", rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("third request should be blocked")
	}
}

func TestAllow_IdentifiersAreIndependent(t *testing.T) {
	l, ctx := setupTestLimiter(t)
	rule := Rule{Key: "rl:test:", Limit: 1, Window: time.Minute}

	l.Allow(ctx, "conn-1", rule)

	allowed, err := l.Allow(ctx, "conn-2", rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("conn-2 should not share conn-1's window")
	}
}

func TestAllow_WindowExpiryResets(t *testing.T) {
	l, ctx := setupTestLimiter(t)
	rule := Rule{Key: "rl:test:", Limit: 1, Window: time.Second}

	l.Allow(ctx, "conn-1", rule)
	if allowed, _ := l.Allow(ctx, "conn-1", rule); allowed {
		t.Fatal("second request in window should be blocked")
	}

	time.Sleep(1100 * time.Millisecond)

	allowed, err := l.Allow(ctx, "conn-1", rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestRemaining(t *testing.T) {
	l, ctx := setupTestLimiter(t)
	rule := Rule{Key: "rl:test:", Limit: 5, Window: time.Minute}

	remaining, err := l.Remaining(ctx, "conn-1", rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 5 {
		t.Fatalf("expected full limit before any request, got %d", remaining)
	}

	l.Allow(ctx, "conn-1", rule)
	l.Allow(ctx, "conn-1", rule)

	remaining, err = l.Remaining(ctx, "conn-1", rule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 3 {
		t.Fatalf("expected 3 remaining after two requests, got %d", remaining)
	}
}
