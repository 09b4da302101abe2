package idgen

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestUUIDv7_Format(t *testing.T) {
	gen := UUIDv7()
	id := gen()
	// UUID format: 8-4-4-4-12
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv7: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestUUIDv7_TimeOrdered(t *testing.T) {
	// WHAT: ids generated in sequence sort lexicographically ascending.
	// WHY: pulled rows rely on this to stay roughly insertion-ordered
	// even when they were created on different clients.
	gen := UUIDv7()
	prev := gen()
	for i := 0; i < 50; i++ {
		time.Sleep(time.Millisecond)
		id := gen()
		if id <= prev {
			t.Fatalf("UUIDv7: id %q not greater than predecessor %q", id, prev)
		}
		prev = id
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("evt_", UUIDv7())
	id := gen()
	if !strings.HasPrefix(id, "evt_") {
		t.Fatalf("Prefixed: expected prefix 'evt_', got %q", id)
	}
	if len(id) != 4+36 {
		t.Fatalf("Prefixed: expected length 40, got %d", len(id))
	}
}

func TestDefault_IsUUIDv7(t *testing.T) {
	id := New()
	u, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("New: default should produce a valid UUID: %v", err)
	}
	if u.Version() != 7 {
		t.Fatalf("New: expected UUID version 7, got %d", u.Version())
	}
}
