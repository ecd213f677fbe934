package utils

import "testing"

func TestHashKey(t *testing.T) {
	a := HashKey("Red Mug kitchen-dining")
	b := HashKey("Red Mug kitchen-dining")
	c := HashKey("Blue Mug kitchen-dining")

	if a != b {
		t.Errorf("expected identical hashes, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different inputs to hash differently")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
