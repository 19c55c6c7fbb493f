package limiter

import (
	"testing"
	"time"
)

func tbConfig() TokenBucketConfig {
	return TokenBucketConfig{
		Capacity:       10,
		Window:         time.Minute,
		RefillAmount:   1,
		RefillInterval: 6 * time.Second,
	}
}

func TestTokenBucket_StartsFull(t *testing.T) {
	s := NewTokenBucketStore(tbConfig())

	d := s.Consume("client", epoch)
	if !d.Allowed {
		t.Fatal("first request should be allowed")
	}
	if d.Remaining != 9 {
		t.Errorf("Remaining = %d, want 9", d.Remaining)
	}
	if d.Limit != 10 {
		t.Errorf("Limit = %d, want 10", d.Limit)
	}
}

func TestTokenBucket_WholeIntervalRefill(t *testing.T) {
	s := NewTokenBucketStore(tbConfig())

	// Drain to zero at t=0.
	for i := 0; i < 10; i++ {
		if d := s.Consume("client", epoch); !d.Allowed {
			t.Fatalf("drain request %d should be allowed", i+1)
		}
	}
	if d := s.Consume("client", epoch); d.Allowed {
		t.Fatal("bucket should be empty")
	}

	// 18s later exactly 3 whole intervals have passed: 3 tokens, no more.
	at := epoch.Add(18 * time.Second)
	for i := 0; i < 3; i++ {
		if d := s.Consume("client", at); !d.Allowed {
			t.Fatalf("refilled request %d should be allowed", i+1)
		}
	}
	d := s.Consume("client", at)
	if d.Allowed {
		t.Fatal("4th request at the same instant should be denied")
	}
	if want := 6 * time.Second; d.RetryAfter != want {
		t.Errorf("RetryAfter = %s, want %s", d.RetryAfter, want)
	}
}

func TestTokenBucket_RefillCappedAtCapacity(t *testing.T) {
	s := NewTokenBucketStore(tbConfig())

	for i := 0; i < 10; i++ {
		s.Consume("client", epoch)
	}

	// After a long idle stretch the bucket is full again, not overfull.
	at := epoch.Add(time.Hour)
	count := 0
	for {
		d := s.Consume("client", at)
		if !d.Allowed {
			break
		}
		count++
		if count > 20 {
			t.Fatal("tokens not capped at capacity")
		}
	}
	if count != 10 {
		t.Errorf("allowed %d requests after idle, want 10", count)
	}
}

func TestTokenBucket_FractionalProgressCarriesForward(t *testing.T) {
	s := NewTokenBucketStore(tbConfig())

	for i := 0; i < 10; i++ {
		s.Consume("client", epoch)
	}

	// 10s is one whole interval plus 4s of progress toward the next. The
	// refill grants 1 token and leaves lastRefill at t=6s, so after spending
	// that token the next one is due at t=12s, only 2s away.
	at := epoch.Add(10 * time.Second)
	if d := s.Consume("client", at); !d.Allowed {
		t.Fatal("one token should have refilled by 10s")
	}
	d := s.Consume("client", at)
	if d.Allowed {
		t.Fatal("only one token should have refilled by 10s")
	}
	if want := 2 * time.Second; d.RetryAfter != want {
		t.Errorf("RetryAfter = %s, want %s (partial interval carried forward)", d.RetryAfter, want)
	}
}

func TestTokenBucket_BulkRefillAmount(t *testing.T) {
	s := NewTokenBucketStore(TokenBucketConfig{
		Capacity:       10,
		Window:         time.Minute,
		RefillAmount:   5,
		RefillInterval: 10 * time.Second,
	})

	for i := 0; i < 10; i++ {
		s.Consume("client", epoch)
	}

	// One interval grants 5 tokens at once.
	at := epoch.Add(10 * time.Second)
	for i := 0; i < 5; i++ {
		if d := s.Consume("client", at); !d.Allowed {
			t.Fatalf("request %d should be allowed after bulk refill", i+1)
		}
	}
	if d := s.Consume("client", at); d.Allowed {
		t.Error("6th request should be denied until the next interval")
	}
}

func TestTokenBucket_SeparateKeys(t *testing.T) {
	cfg := tbConfig()
	cfg.Capacity = 2
	s := NewTokenBucketStore(cfg)

	s.Consume("a", epoch)
	s.Consume("a", epoch)
	if d := s.Consume("a", epoch); d.Allowed {
		t.Error("key a should be denied")
	}
	if d := s.Consume("b", epoch); !d.Allowed {
		t.Error("key b should be allowed (separate bucket)")
	}
}

func TestTokenBucket_ImplementsStore(t *testing.T) {
	var _ Store = NewTokenBucketStore(tbConfig())
}
