package dsp

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestDopplerIdentityAtRest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := NewDoppler(64)
		chunk := make([]float64, 64)
		for i := range chunk {
			chunk[i] = rapid.Float64Range(-1, 1).Draw(t, "sample")
		}
		out := d.Apply(chunk, 0)
		if &out[0] != &chunk[0] {
			t.Fatal("zero radial velocity must pass the block through untouched")
		}
	})
}

func TestDopplerIdentityBand(t *testing.T) {
	d := NewDoppler(128)
	chunk := make([]float64, 128)
	chunk[0] = 1

	// factor = c/(c+v); v = 0.1 m/s keeps |factor-1| under 1e-3.
	if out := d.Apply(chunk, 0.1); &out[0] != &chunk[0] {
		t.Error("velocity inside the identity band should not resample")
	}
}

func TestDopplerRecedingShrinks(t *testing.T) {
	d := NewDoppler(128)
	chunk := make([]float64, 128)
	for i := range chunk {
		chunk[i] = math.Sin(2 * math.Pi * 8 * float64(i) / 128)
	}

	// Receding source: factor < 1, block shrinks and gets zero-padded.
	out := d.Apply(chunk, 40)
	if &out[0] == &chunk[0] {
		t.Fatal("active doppler should return the resampled buffer")
	}
	if len(out) != 128 {
		t.Fatalf("output length %d, want 128", len(out))
	}
	factor := 343.0 / (343.0 + 40)
	m := int(math.Round(128 * factor))
	for i := m; i < 128; i++ {
		if out[i] != 0 {
			t.Fatalf("expected zero padding from %d, got %f at %d", m, out[i], i)
		}
	}
}

func TestDopplerApproachingTruncates(t *testing.T) {
	d := NewDoppler(128)
	chunk := make([]float64, 128)
	for i := range chunk {
		chunk[i] = float64(i)
	}

	out := d.Apply(chunk, -40)
	if len(out) != 128 {
		t.Fatalf("output length %d, want 128", len(out))
	}
	// Approaching source stretches the block: the last output sample maps
	// to an input position before the end of the block.
	if out[127] >= chunk[127] {
		t.Errorf("expected truncated ramp, got tail %f", out[127])
	}
}
