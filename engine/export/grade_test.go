package export

import (
	"testing"
)

func TestPercentilesOfRamp(t *testing.T) {
	const n = 1000
	b := NewBuffer(n, 1)
	for i := 0; i < n; i++ {
		v := float32(i) / float32(n-1)
		b.Set(i, 0, [3]float32{v, v, v})
	}
	lo, hi := Percentiles(b, LowPercentile, HighPercentile)
	if lo < 0 || lo > 0.01 {
		t.Errorf("lo = %v, want near 0.003", lo)
	}
	if hi < 0.985 || hi > 1 {
		t.Errorf("hi = %v, want near 0.995", hi)
	}
}

func TestAutoEnhanceStaysInRange(t *testing.T) {
	b := NewBuffer(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := float32(x+y) / 30
			b.Set(x, y, [3]float32{v * 0.4, v * 0.5, v * 1.6})
		}
	}
	AutoEnhance(b)
	for i, v := range b.Pix {
		if v < 0 || v > 1 || v != v {
			t.Fatalf("channel %d = %v after enhance", i, v)
		}
	}
}

func TestAutoEnhanceFlatImage(t *testing.T) {
	b := NewBuffer(4, 4)
	for i := range b.Pix {
		b.Pix[i] = 0.5
	}
	AutoEnhance(b)
	if !b.finite() {
		t.Fatal("flat image produced non-finite values")
	}
	first := b.At(0, 0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if b.At(x, y) != first {
				t.Fatalf("flat image graded unevenly at (%d,%d)", x, y)
			}
		}
	}
}

func TestAutoEnhanceGainClamp(t *testing.T) {
	// A strongly blue image: the blue gain wants to drop far below MinGain.
	b := NewBuffer(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v := 0.1 + float32(x)/10
			b.Set(x, y, [3]float32{v * 0.2, v * 0.2, v})
		}
	}
	AutoEnhance(b)
	c := b.At(7, 7)
	if c[2] <= c[0] {
		t.Errorf("clamped white balance should keep the blue cast, got %v", c)
	}
}

func TestDenoise(t *testing.T) {
	b := NewBuffer(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v := float32(0.5)
			if x >= 4 {
				v = 1
			}
			b.Set(x, y, [3]float32{v, v, v})
		}
	}
	b.Set(1, 1, [3]float32{0.55, 0.55, 0.55})

	if Denoise(b, 0) != b {
		t.Error("zero strength must return the input")
	}

	out := Denoise(b, 1)
	if got := out.At(1, 1)[0]; got >= 0.55 || got <= 0.5 {
		t.Errorf("noisy pixel = %v, want pulled toward 0.5", got)
	}
	if got := out.At(3, 4)[0]; got > 0.51 {
		t.Errorf("edge bled: left side = %v", got)
	}
	if got := out.At(4, 4)[0]; got < 0.99 {
		t.Errorf("edge bled: right side = %v", got)
	}
}

func TestQuantize(t *testing.T) {
	if Quantize(0) != 0 || Quantize(1) != 255 || Quantize(2) != 255 || Quantize(-1) != 0 {
		t.Error("Quantize endpoints")
	}
	var nan float32
	nan = nan / nan
	if Quantize(nan) != 0 {
		t.Error("Quantize(NaN) must be 0")
	}
	if Quantize(0.5) != 186 {
		t.Errorf("Quantize(0.5) = %d, want 186", Quantize(0.5))
	}
}
