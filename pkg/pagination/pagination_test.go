package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit: got %d", got)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("negative limit: got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 50); got != MaxLimit {
		t.Fatalf("over max: got %d", got)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("in-range limit: got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	want := Cursor{
		Timestamp: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(want)
	got, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !got.Timestamp.Equal(want.Timestamp) || got.ID != want.ID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	t.Parallel()

	got, err := ParseCursor("  ")
	if err != nil || got != nil {
		t.Fatalf("expected nil cursor, got %v %v", got, err)
	}
}

func TestParseCursorInvalid(t *testing.T) {
	t.Parallel()

	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected decode error")
	}
}
