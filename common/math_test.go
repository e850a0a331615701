package common

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"in range", 1.0, 1.0},
		{"pi stays", math32.Pi, math32.Pi},
		{"negative pi wraps", -math32.Pi, math32.Pi},
		{"just over pi", math32.Pi + 0.5, -math32.Pi + 0.5},
		{"several turns", 4*math32.Pi + 0.25, 0.25},
		{"negative turns", -4*math32.Pi - 0.25, -0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapAngle(tt.in)
			if math32.Abs(got-tt.want) > 1e-4 {
				t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSmoothstep(t *testing.T) {
	if got := Smoothstep(0, 1, -1); got != 0 {
		t.Errorf("below edge0: got %v", got)
	}
	if got := Smoothstep(0, 1, 2); got != 1 {
		t.Errorf("above edge1: got %v", got)
	}
	if got := Smoothstep(0, 1, 0.5); math32.Abs(got-0.5) > 1e-6 {
		t.Errorf("midpoint: got %v", got)
	}
	if got := Smoothstep(1, 1, 0.5); got != 0 {
		t.Errorf("degenerate edges below: got %v", got)
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1) {
		t.Error("1 should be finite")
	}
	if IsFinite(math32.NaN()) {
		t.Error("NaN should not be finite")
	}
	if IsFinite(math32.Inf(1)) {
		t.Error("+Inf should not be finite")
	}
}

func TestIsControlKey(t *testing.T) {
	for _, code := range ControlKeyCodes {
		if !IsControlKey(code) {
			t.Errorf("IsControlKey(%d) = false", code)
		}
	}
	if IsControlKey(KeyScreenshot) {
		t.Error("screenshot hotkey must not be a control key")
	}
}
