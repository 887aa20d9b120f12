package numeric

import (
	"fmt"
	"testing"
	"time"
)

func TestMintUserIDIsSixDigits(t *testing.T) {
	id, err := MintUserID(func(string) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("MintUserID: %v", err)
	}
	if len(id) != 6 {
		t.Fatalf("expected 6-digit id, got %q", id)
	}
}

func TestMintUserIDRetriesOnCollision(t *testing.T) {
	calls := 0
	id, err := MintUserID(func(string) (bool, error) {
		calls++
		return calls <= 3, nil // first 3 candidates are taken
	})
	if err != nil {
		t.Fatalf("MintUserID: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 exists() calls, got %d", calls)
	}
	if len(id) != 6 {
		t.Fatalf("expected 6-digit id, got %q", id)
	}
}

func TestMintUserIDExhaustsRetries(t *testing.T) {
	_, err := MintUserID(func(string) (bool, error) { return true, nil })
	if err == nil {
		t.Fatalf("expected an error when every candidate collides")
	}
}

func TestMintPoolIDFormat(t *testing.T) {
	id, err := MintPoolID(func(string) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("MintPoolID: %v", err)
	}
	if len(id) != 42 || id[:2] != "0x" {
		t.Fatalf("expected 0x + 40 hex chars, got %q (len %d)", id, len(id))
	}
}

func TestMintTimestampIDIncrementsOnCollision(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	base := fmt.Sprintf("%d", now.UnixMilli())

	seen := map[string]bool{base: true}
	id, err := MintTimestampID(func(candidate string) (bool, error) {
		return seen[candidate], nil
	}, now)
	if err != nil {
		t.Fatalf("MintTimestampID: %v", err)
	}
	want := fmt.Sprintf("%d", now.UnixMilli()+1)
	if id != want {
		t.Fatalf("expected incremented id %q, got %q", want, id)
	}
}
