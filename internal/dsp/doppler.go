package dsp

import "math"

// dopplerIdentityBand: factors this close to 1 pass the block through
// untouched.
const dopplerIdentityBand = 1e-3

// Doppler shifts a block's frequency content by resampling it according
// to the radial velocity between source and listener. Positive velocity
// means the source recedes: the factor c/(c+v) drops below 1 and the
// block is resampled onto fewer samples, then zero-padded.
type Doppler struct {
	c       float64
	scratch []float64
	out     []float64
}

func NewDoppler(blockSize int) *Doppler {
	return &Doppler{
		c: 343.0,
		// Approaching sources stretch the block; four blocks of headroom
		// covers any speed the scene geometry can produce.
		scratch: make([]float64, 4*blockSize),
		out:     make([]float64, blockSize),
	}
}

// Apply returns chunk itself when the shift factor is within the
// identity band, otherwise a reused buffer with the resampled block
// truncated or zero-padded back to the input length.
func (d *Doppler) Apply(chunk []float64, radialVelocity float64) []float64 {
	factor := d.c / (d.c + radialVelocity)
	if math.Abs(factor-1) < dopplerIdentityBand {
		return chunk
	}

	n := len(chunk)
	m := int(math.Round(float64(n) * factor))
	if m <= 0 {
		return chunk
	}
	if m > len(d.scratch) {
		m = len(d.scratch)
	}

	// Linear interpolation resample onto m points.
	step := float64(n-1) / float64(m-1)
	for i := 0; i < m; i++ {
		pos := float64(i) * step
		j := int(pos)
		if j >= n-1 {
			d.scratch[i] = chunk[n-1]
			continue
		}
		frac := pos - float64(j)
		d.scratch[i] = chunk[j]*(1-frac) + chunk[j+1]*frac
	}

	if m >= n {
		copy(d.out, d.scratch[:n])
	} else {
		copy(d.out, d.scratch[:m])
		for i := m; i < n; i++ {
			d.out[i] = 0
		}
	}
	return d.out
}
