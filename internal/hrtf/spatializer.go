package hrtf

import "github.com/mjibson/go-dsp/fft"

// Spatializer convolves mono blocks with directional filters. Output
// selection is overlap-save style: the first blockSize real samples of
// the inverse transform, tail discarded.
type Spatializer struct {
	db        *Database
	blockSize int

	padded []float64
	prodL  []complex128
	prodR  []complex128
	outL   []float64
	outR   []float64
}

func NewSpatializer(db *Database, blockSize int) *Spatializer {
	return &Spatializer{
		db:        db,
		blockSize: blockSize,
		padded:    make([]float64, db.fftSize),
		prodL:     make([]complex128, db.fftSize),
		prodR:     make([]complex128, db.fftSize),
		outL:      make([]float64, blockSize),
		outR:      make([]float64, blockSize),
	}
}

// Apply spatializes chunk toward (azimuth, elevation) in degrees. The
// returned slices are reused on the next call; callers accumulate them
// before invoking Apply again.
func (s *Spatializer) Apply(chunk []float64, azimuth, elevation float64) (l, r []float64) {
	f := s.db.Nearest(azimuth, elevation)

	n := copy(s.padded, chunk)
	for i := n; i < len(s.padded); i++ {
		s.padded[i] = 0
	}
	spec := fft.FFTReal(s.padded)

	for i := range spec {
		s.prodL[i] = spec[i] * f.L[i]
		s.prodR[i] = spec[i] * f.R[i]
	}

	tl := fft.IFFT(s.prodL)
	tr := fft.IFFT(s.prodR)
	for i := 0; i < s.blockSize; i++ {
		s.outL[i] = real(tl[i])
		s.outR[i] = real(tr[i])
	}
	return s.outL, s.outR
}
