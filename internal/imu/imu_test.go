package imu

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func TestSampleDeterministicPerSeed(t *testing.T) {
	a := New(1).Sample(0.5)
	b := New(1).Sample(0.5)
	if a.Pos != b.Pos || a.Quat != b.Quat {
		t.Error("same seed should reproduce the same sample")
	}

	c := New(2).Sample(0.5)
	if a.Pos == c.Pos {
		t.Error("different seeds should diverge")
	}
}

func TestSampleQuaternionUnit(t *testing.T) {
	s := New(3)
	for i := 0; i < 100; i++ {
		raw := s.Sample(float64(i) * 0.01)
		if math.Abs(raw.Quat.Norm()-1) > 1e-6 {
			t.Fatalf("sample %d quaternion norm %f", i, raw.Quat.Norm())
		}
	}
}

func TestDemoStaysNearEarLevel(t *testing.T) {
	s := New(4)
	for i := 0; i < 200; i++ {
		raw := s.Sample(float64(i) * 0.05)
		if math.Abs(raw.Pos.Z-1.6) > 1.0 {
			t.Fatalf("demo position drifted to z=%f", raw.Pos.Z)
		}
	}
}

func TestSetTargetOverridesDemo(t *testing.T) {
	s := New(5)
	target := r3.Vector{X: 3, Y: -2, Z: 1.2}
	s.SetTarget(target, 45, 0)

	// Average out the beacon noise; the mean should sit on the target.
	var mean r3.Vector
	const n = 500
	for i := 0; i < n; i++ {
		mean = mean.Add(s.Sample(float64(i) * 0.01).Pos)
	}
	mean = mean.Mul(1.0 / n)
	if mean.Sub(target).Norm() > 0.05 {
		t.Errorf("mean sampled position %v too far from target %v", mean, target)
	}
}
