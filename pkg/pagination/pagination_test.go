package pagination

import (
	"testing"
	"time"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 5: 5, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 500, time.UTC)
	encoded := EncodeCursor(Cursor{CreatedAt: at, ID: 42})

	decoded, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !decoded.CreatedAt.Equal(at) || decoded.ID != 42 {
		t.Fatalf("unexpected cursor %+v", decoded)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor(""); c != nil || err != nil {
		t.Fatalf("empty cursor should mean first page")
	}
	for _, raw := range []string{"%%%", EncodeCursor(Cursor{})[:4], "bm9waXBl"} {
		if _, err := ParseCursor(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestCursorBefore(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := Cursor{CreatedAt: at, ID: 10}

	if !c.Before(at.Add(-time.Minute), 99) {
		t.Fatalf("older order should follow the cursor")
	}
	if !c.Before(at, 9) {
		t.Fatalf("same time with lower id should follow the cursor")
	}
	if c.Before(at, 10) || c.Before(at.Add(time.Minute), 1) {
		t.Fatalf("cursor row and newer orders should not follow")
	}
}
