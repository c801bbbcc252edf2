// Package imu simulates the 9-DOF IMU and ranging beacon that feed the
// fusion loop: noisy samples around a ground-truth pose, with a demo
// trajectory of gentle head sway when nothing drives the truth.
package imu

import (
	"math"
	"math/rand"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/san-kum/soundscape/internal/fusion"
	"github.com/san-kum/soundscape/internal/spatial"
)

const (
	orientationNoise = 0.01
	positionNoise    = 0.15 // meters, the beacon's rated accuracy
	driftRate        = 0.001
)

type Simulator struct {
	rng *rand.Rand

	mu        sync.Mutex
	manual    bool
	basePos   r3.Vector
	baseYaw   float64 // degrees
	basePitch float64

	gyroDrift r3.Vector
}

func New(seed int64) *Simulator {
	return &Simulator{
		rng:     rand.New(rand.NewSource(seed)),
		basePos: r3.Vector{Z: 1.6},
	}
}

// SetTarget switches to manual ground truth. Yaw and pitch are in
// degrees; yaw rotates about z, pitch about x.
func (s *Simulator) SetTarget(pos r3.Vector, yaw, pitch float64) {
	s.mu.Lock()
	s.manual = true
	s.basePos = pos
	s.baseYaw = yaw
	s.basePitch = pitch
	s.mu.Unlock()
}

// Sample produces one raw reading for the elapsed time since start.
func (s *Simulator) Sample(elapsed float64) fusion.RawSample {
	s.mu.Lock()
	manual, pos, yaw, pitch := s.manual, s.basePos, s.baseYaw, s.basePitch
	s.mu.Unlock()

	var quat spatial.Quaternion
	if manual {
		quat = spatial.FromAxisAngle(r3.Vector{Z: 1}, rad(yaw)).
			Mul(spatial.FromAxisAngle(r3.Vector{X: 1}, rad(pitch)))
	} else {
		// Demo sway: slow yaw/pitch breathing and a small positional orbit.
		quat = spatial.FromAxisAngle(r3.Vector{Z: 1}, 0.2*math.Sin(elapsed*0.5)).
			Mul(spatial.FromAxisAngle(r3.Vector{X: 1}, 0.1*math.Cos(elapsed*0.3)))
		pos = r3.Vector{
			X: 0.1 * math.Sin(elapsed*0.2),
			Y: 0.1 * math.Cos(elapsed*0.2),
			Z: 1.6,
		}
	}
	return s.noisy(quat, pos)
}

func (s *Simulator) noisy(trueQuat spatial.Quaternion, truePos r3.Vector) fusion.RawSample {
	s.gyroDrift = s.gyroDrift.Add(s.gaussVec(driftRate))

	noiseQuat := spatial.Quaternion{
		W: s.rng.NormFloat64(),
		X: s.rng.NormFloat64(),
		Y: s.rng.NormFloat64(),
		Z: s.rng.NormFloat64(),
	}.Normalize()

	return fusion.RawSample{
		Pos:   truePos.Add(s.gaussVec(positionNoise)),
		Quat:  spatial.Slerp(trueQuat, noiseQuat, orientationNoise),
		Accel: s.gaussVec(0.05),
		Gyro:  s.gyroDrift.Add(s.gaussVec(0.01)),
	}
}

func (s *Simulator) gaussVec(sigma float64) r3.Vector {
	return r3.Vector{
		X: s.rng.NormFloat64() * sigma,
		Y: s.rng.NormFloat64() * sigma,
		Z: s.rng.NormFloat64() * sigma,
	}
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
