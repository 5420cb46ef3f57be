package api

import (
	"testing"
	"time"
)

type recordingCache struct {
	keys []string
	ttls []time.Duration
}

func (c *recordingCache) GetBytes(string) ([]byte, bool, error) { return nil, false, nil }

func (c *recordingCache) SetBytes(key string, _ []byte, ttl time.Duration) error {
	c.keys = append(c.keys, key)
	c.ttls = append(c.ttls, ttl)
	return nil
}

func TestCacheSetUsesConfiguredTTL(t *testing.T) {
	rec := &recordingCache{}
	h := NewEngineHandler(nil, nil, nil)
	h.SetCache(rec)
	h.SetCacheTTL(45 * time.Second)

	h.cacheSet("correlations", "correlations:all", []string{"x"})

	if len(rec.ttls) != 1 {
		t.Fatalf("expected 1 cache write, got %d", len(rec.ttls))
	}
	if rec.ttls[0] != 45*time.Second {
		t.Errorf("expected 45s ttl, got %v", rec.ttls[0])
	}
}

func TestCacheSetDefaultTTL(t *testing.T) {
	rec := &recordingCache{}
	h := NewEngineHandler(nil, nil, nil)
	h.SetCache(rec)

	h.cacheSet("correlations", "correlations:all", []string{"x"})

	if len(rec.ttls) != 1 {
		t.Fatalf("expected 1 cache write, got %d", len(rec.ttls))
	}
	if rec.ttls[0] != defaultCacheTTL {
		t.Errorf("expected default ttl, got %v", rec.ttls[0])
	}

	// Non-positive overrides are ignored.
	h.SetCacheTTL(0)
	h.cacheSet("correlations", "correlations:all", []string{"x"})
	if rec.ttls[1] != defaultCacheTTL {
		t.Errorf("expected default ttl to survive a zero override, got %v", rec.ttls[1])
	}
}
