package booking

import "testing"

func TestNextCodeRangeAndDistinctness(t *testing.T) {
	svc := NewService(nil)

	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		code := svc.nextCode()
		if code < 10000 || code > 99999 {
			t.Fatalf("code %d outside 5-digit range", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code %d within one sequence run", code)
		}
		seen[code] = true
	}
}

func TestNewIDShape(t *testing.T) {
	a := newID()
	b := newID()
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatal("expected distinct ids")
	}
}
