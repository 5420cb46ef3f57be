package util

import "testing"

func TestParseIntDefault(t *testing.T) {
    if got := ParseIntDefault("15", 3); got != 15 {
        t.Fatalf("expected 15, got %d", got)
    }
    if got := ParseIntDefault("oops", 3); got != 3 {
        t.Fatalf("expected default, got %d", got)
    }
    if got := ParseIntDefault("", 3); got != 3 {
        t.Fatalf("expected default for empty, got %d", got)
    }
}
