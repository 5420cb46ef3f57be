package ratelimit

import (
	"testing"
	"time"
)

func TestAllowDrainsBucket(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 0) {
			t.Fatalf("expected allow on request %d", i)
		}
	}
	if l.Allow("k", 3, 0) {
		t.Fatalf("expected deny after capacity drained")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	base := time.Now()
	l.now = func() time.Time { return base }

	if !l.Allow("k", 1, 1) {
		t.Fatalf("expected first request allowed")
	}
	if l.Allow("k", 1, 1) {
		t.Fatalf("expected deny with empty bucket")
	}

	base = base.Add(2 * time.Second)
	if !l.Allow("k", 1, 1) {
		t.Fatalf("expected allow after refill")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("expected allow for a")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("expected allow for b")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("expected deny for drained a")
	}
}
