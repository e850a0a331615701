package common

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "out.png", "other.png"); got != "out.png" {
		t.Errorf("Coalesce = %q, want out.png", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce of zeros = %d, want 0", got)
	}
}

func TestSliceToBytes(t *testing.T) {
	if SliceToBytes([]float32{}) != nil {
		t.Fatal("expected nil for empty input")
	}
	b := SliceToBytes([]float32{1.5, -2})
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
	if v := math.Float32frombits(binary.NativeEndian.Uint32(b[4:])); v != -2 {
		t.Fatalf("second element = %v, want -2", v)
	}
}
