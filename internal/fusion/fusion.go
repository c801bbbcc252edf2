// Package fusion tracks the listener's head pose from noisy sensor
// samples: a linear Kalman filter for ranging-beacon position and a
// complementary slerp filter for IMU orientation.
package fusion

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/soundscape/internal/config"
	"github.com/san-kum/soundscape/internal/spatial"
)

// RawSample is one 100 Hz sensor reading. Accel and Gyro ride along for
// future strapdown integration; the current filters ignore them.
type RawSample struct {
	Pos   r3.Vector
	Quat  spatial.Quaternion
	Accel r3.Vector
	Gyro  r3.Vector
}

type Fusion struct {
	kf    *Kalman
	quat  spatial.Quaternion
	alpha float64
}

func New(kcfg config.KalmanConfig, fcfg config.FusionConfig) *Fusion {
	return &Fusion{
		kf:    NewKalman(kcfg.Dt, kcfg.ProcessNoise, kcfg.MeasurementNoise),
		quat:  spatial.Identity(),
		alpha: fcfg.AlphaOrientation,
	}
}

// Update runs one predict/update cycle and blends orientation a
// fraction (1 - alpha) toward the measurement.
func (f *Fusion) Update(raw RawSample) spatial.Pose {
	f.kf.Predict()
	f.kf.Update(raw.Pos)

	f.quat = spatial.Slerp(f.quat, raw.Quat, 1-f.alpha).Normalize()

	return spatial.Pose{
		Position:    f.kf.Position(),
		Orientation: f.quat,
	}
}

// Orientation is the last fused quaternion.
func (f *Fusion) Orientation() spatial.Quaternion { return f.quat }

// CovarianceFinite proxies the position filter's health check.
func (f *Fusion) CovarianceFinite() bool { return f.kf.CovarianceFinite() }
