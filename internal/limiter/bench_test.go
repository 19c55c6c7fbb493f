package limiter

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func BenchmarkFixedWindow_SingleKey(b *testing.B) {
	s := NewFixedWindowStore(FixedWindowConfig{Window: time.Minute, MaxRequests: 1 << 30})
	now := epoch
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Consume("bench", now)
	}
}

func BenchmarkSlidingWindow_SingleKey(b *testing.B) {
	s := NewSlidingWindowStore(SlidingWindowConfig{MaxPoints: 100, Window: time.Minute})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Spread timestamps so the log keeps draining instead of growing.
		s.Consume("bench", epoch.Add(time.Duration(i)*time.Second))
	}
}

func BenchmarkTokenBucket_SingleKey(b *testing.B) {
	s := NewTokenBucketStore(TokenBucketConfig{
		Capacity: 1 << 20, Window: time.Minute, RefillAmount: 1, RefillInterval: time.Second,
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Consume("bench", epoch)
	}
}

func BenchmarkTokenBucket_ManyKeysParallel(b *testing.B) {
	s := NewTokenBucketStore(TokenBucketConfig{
		Capacity: 1 << 20, Window: time.Minute, RefillAmount: 1, RefillInterval: time.Second,
	})
	var seq atomic.Int64
	b.RunParallel(func(pb *testing.PB) {
		key := fmt.Sprintf("bench-%d", seq.Add(1))
		for pb.Next() {
			s.Consume(key, epoch)
		}
	})
}
