package fusion

import (
	"math"

	"github.com/golang/geo/r3"
)

// Kalman smooths ranging-beacon positions with a constant-velocity
// model. State is [x y z vx vy vz]; only position is observed.
type Kalman struct {
	dt float64
	q  float64 // process noise diagonal
	r  float64 // measurement noise diagonal

	x [6]float64
	p [6][6]float64
}

func NewKalman(dt, processNoise, measurementNoise float64) *Kalman {
	k := &Kalman{dt: dt, q: processNoise, r: measurementNoise}
	for i := 0; i < 6; i++ {
		k.p[i][i] = 1
	}
	return k
}

func (k *Kalman) Position() r3.Vector {
	return r3.Vector{X: k.x[0], Y: k.x[1], Z: k.x[2]}
}

func (k *Kalman) Velocity() r3.Vector {
	return r3.Vector{X: k.x[3], Y: k.x[4], Z: k.x[5]}
}

// Predict advances the state by one timestep: x <- Fx, P <- FPF' + Q.
func (k *Kalman) Predict() {
	for i := 0; i < 3; i++ {
		k.x[i] += k.dt * k.x[i+3]
	}

	var f [6][6]float64
	for i := 0; i < 6; i++ {
		f[i][i] = 1
	}
	f[0][3], f[1][4], f[2][5] = k.dt, k.dt, k.dt

	fp := mul6(f, k.p)
	k.p = mul6(fp, transpose6(f))
	for i := 0; i < 6; i++ {
		k.p[i][i] += k.q
	}
}

// Update folds in a position measurement. The observation matrix picks
// the first three state components, so the 3x3 innovation covariance
// is just the position block of P plus R.
func (k *Kalman) Update(z r3.Vector) {
	y := [3]float64{z.X - k.x[0], z.Y - k.x[1], z.Z - k.x[2]}

	var s [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s[i][j] = k.p[i][j]
		}
		s[i][i] += k.r
	}
	si, ok := inv3(s)
	if !ok {
		return
	}

	// K = P H' S^-1, a 6x3 gain.
	var gain [6][3]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			for m := 0; m < 3; m++ {
				gain[i][j] += k.p[i][m] * si[m][j]
			}
		}
	}

	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			k.x[i] += gain[i][j] * y[j]
		}
	}

	// P <- (I - K H) P, then symmetrize to keep P positive
	// semi-definite under roundoff.
	var ikh [6][6]float64
	for i := 0; i < 6; i++ {
		ikh[i][i] = 1
	}
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			ikh[i][j] -= gain[i][j]
		}
	}
	k.p = mul6(ikh, k.p)
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			m := (k.p[i][j] + k.p[j][i]) / 2
			k.p[i][j], k.p[j][i] = m, m
		}
	}
}

// CovarianceFinite reports whether P still holds finite values.
func (k *Kalman) CovarianceFinite() bool {
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if math.IsNaN(k.p[i][j]) || math.IsInf(k.p[i][j], 0) {
				return false
			}
		}
	}
	return true
}

func mul6(a, b [6][6]float64) [6][6]float64 {
	var c [6][6]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			s := 0.0
			for m := 0; m < 6; m++ {
				s += a[i][m] * b[m][j]
			}
			c[i][j] = s
		}
	}
	return c
}

func transpose6(a [6][6]float64) [6][6]float64 {
	var t [6][6]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			t[i][j] = a[j][i]
		}
	}
	return t
}

func inv3(a [3][3]float64) ([3][3]float64, bool) {
	det := a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
	if det == 0 {
		return a, false
	}
	d := 1 / det
	var inv [3][3]float64
	inv[0][0] = (a[1][1]*a[2][2] - a[1][2]*a[2][1]) * d
	inv[0][1] = (a[0][2]*a[2][1] - a[0][1]*a[2][2]) * d
	inv[0][2] = (a[0][1]*a[1][2] - a[0][2]*a[1][1]) * d
	inv[1][0] = (a[1][2]*a[2][0] - a[1][0]*a[2][2]) * d
	inv[1][1] = (a[0][0]*a[2][2] - a[0][2]*a[2][0]) * d
	inv[1][2] = (a[0][2]*a[1][0] - a[0][0]*a[1][2]) * d
	inv[2][0] = (a[1][0]*a[2][1] - a[1][1]*a[2][0]) * d
	inv[2][1] = (a[0][1]*a[2][0] - a[0][0]*a[2][1]) * d
	inv[2][2] = (a[0][0]*a[1][1] - a[0][1]*a[1][0]) * d
	return inv, true
}
