package repository

import "testing"

func TestIsValidLag(t *testing.T) {
	for _, h := range LagWindows {
		if !IsValidLag(h) {
			t.Errorf("lag %d should be valid", h)
		}
	}
	for _, h := range []int{0, 2, 36, 169} {
		if IsValidLag(h) {
			t.Errorf("lag %d should be invalid", h)
		}
	}
}
