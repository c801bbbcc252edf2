package dsp

import "math"

// Crosstalk pre-compensates loudspeaker output with an instantaneous
// 2x2 cross-feed matrix, then peak-normalizes the block when it clips.
// The delay-line recursive canceller this approximates is a documented
// future extension.
type Crosstalk struct {
	alpha float64
}

func NewCrosstalk(alpha float64) Crosstalk {
	return Crosstalk{alpha: alpha}
}

// Process rewrites l and r in place.
func (c Crosstalk) Process(l, r []float64) {
	peak := 0.0
	for i := range l {
		lo := 1.1*l[i] - 0.5*c.alpha*r[i]
		ro := 1.1*r[i] - 0.5*c.alpha*l[i]
		l[i], r[i] = lo, ro
		if a := math.Abs(lo); a > peak {
			peak = a
		}
		if a := math.Abs(ro); a > peak {
			peak = a
		}
	}
	if peak > 1 {
		for i := range l {
			l[i] /= peak
			r[i] /= peak
		}
	}
}
