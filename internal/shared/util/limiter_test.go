package util

import (
	"context"
	"testing"
	"time"
)

func TestDisabledLimiter(t *testing.T) {
	l := NewLimiter(0, 1)
	if l != nil {
		t.Fatal("non-positive rate should yield a nil limiter")
	}
	if err := l.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter Wait = %v, want nil", err)
	}
	if !l.Allow() {
		t.Error("nil limiter should always allow")
	}
}

func TestLimiterBurst(t *testing.T) {
	l := NewLimiter(1, 2)
	if !l.Allow() || !l.Allow() {
		t.Error("burst of 2 should allow two immediate events")
	}
	if l.Allow() {
		t.Error("third immediate event should be throttled")
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow() // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Error("Wait should fail once the context expires")
	}
}
