package limiter

import (
	"testing"
	"time"
)

func TestSlidingWindow_BasicAllow(t *testing.T) {
	s := NewSlidingWindowStore(SlidingWindowConfig{MaxPoints: 5, Window: time.Minute})

	d := s.Consume("client", epoch)
	if !d.Allowed {
		t.Fatal("first request should be allowed")
	}
	if d.Remaining != 4 {
		t.Errorf("Remaining = %d, want 4", d.Remaining)
	}
	if d.Limit != 5 {
		t.Errorf("Limit = %d, want 5", d.Limit)
	}
}

func TestSlidingWindow_DeniedAtLimit(t *testing.T) {
	s := NewSlidingWindowStore(SlidingWindowConfig{MaxPoints: 10, Window: time.Minute})

	at := epoch.Add(30 * time.Second)
	for i := 0; i < 10; i++ {
		if d := s.Consume("client", at); !d.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	d := s.Consume("client", epoch.Add(60*time.Second))
	if d.Allowed {
		t.Fatal("request over the limit should be denied")
	}
	// Oldest entry is at 30s, so quota returns at 30s + 1m = 90s.
	if want := 30 * time.Second; d.RetryAfter != want {
		t.Errorf("RetryAfter = %s, want %s", d.RetryAfter, want)
	}
}

func TestSlidingWindow_GradualExpiry(t *testing.T) {
	s := NewSlidingWindowStore(SlidingWindowConfig{MaxPoints: 10, Window: time.Minute})

	// 5 requests at t=10s, 5 more at t=40s.
	for i := 0; i < 5; i++ {
		s.Consume("client", epoch.Add(10*time.Second))
	}
	for i := 0; i < 5; i++ {
		s.Consume("client", epoch.Add(40*time.Second))
	}

	if d := s.Consume("client", epoch.Add(60*time.Second)); d.Allowed {
		t.Fatal("should be denied while all 10 are in the window")
	}

	// At t=75s the first batch (t=10s) is 65s old and has expired; only the
	// second batch of 5 remains, so one consume is admitted with 4 left.
	d := s.Consume("client", epoch.Add(75*time.Second))
	if !d.Allowed {
		t.Fatal("should be allowed after the first batch expires")
	}
	if d.Remaining != 4 {
		t.Errorf("Remaining = %d, want 4", d.Remaining)
	}
}

func TestSlidingWindow_ExactWindowAgeExpires(t *testing.T) {
	s := NewSlidingWindowStore(SlidingWindowConfig{MaxPoints: 1, Window: time.Minute})

	s.Consume("client", epoch)
	if d := s.Consume("client", epoch.Add(time.Minute)); !d.Allowed {
		t.Error("an entry exactly one window old should have expired")
	}
}

func TestSlidingWindow_BlockDuration(t *testing.T) {
	s := NewSlidingWindowStore(SlidingWindowConfig{
		MaxPoints: 2,
		Window:    time.Minute,
		BlockFor:  2 * time.Minute,
	})

	s.Consume("client", epoch)
	s.Consume("client", epoch)

	// Denied at the limit: RetryAfter reflects natural expiry, and the block
	// starts ticking.
	d := s.Consume("client", epoch)
	if d.Allowed {
		t.Fatal("3rd request should be denied")
	}
	if want := time.Minute; d.RetryAfter != want {
		t.Errorf("RetryAfter = %s, want %s", d.RetryAfter, want)
	}

	// At t=90s the log has drained, but the block holds until t=120s.
	d = s.Consume("client", epoch.Add(90*time.Second))
	if d.Allowed {
		t.Fatal("should still be blocked after natural expiry")
	}
	if want := 30 * time.Second; d.RetryAfter != want {
		t.Errorf("RetryAfter = %s, want %s while blocked", d.RetryAfter, want)
	}

	// Once the block lapses the key is admitted again.
	if d := s.Consume("client", epoch.Add(121*time.Second)); !d.Allowed {
		t.Error("should be allowed after the block expires")
	}
}

func TestSlidingWindow_NoBlockWhenZero(t *testing.T) {
	s := NewSlidingWindowStore(SlidingWindowConfig{MaxPoints: 1, Window: time.Minute})

	s.Consume("client", epoch)
	s.Consume("client", epoch) // denied, but no block configured

	if d := s.Consume("client", epoch.Add(61*time.Second)); !d.Allowed {
		t.Error("should be allowed as soon as the log drains")
	}
}

func TestSlidingWindow_SeparateKeys(t *testing.T) {
	s := NewSlidingWindowStore(SlidingWindowConfig{MaxPoints: 1, Window: time.Minute})

	s.Consume("a", epoch)
	if d := s.Consume("a", epoch); d.Allowed {
		t.Error("key a should be denied")
	}
	if d := s.Consume("b", epoch); !d.Allowed {
		t.Error("key b should be allowed (separate log)")
	}
}

func TestSlidingWindow_ImplementsStore(t *testing.T) {
	var _ Store = NewSlidingWindowStore(SlidingWindowConfig{MaxPoints: 1, Window: time.Minute})
}
