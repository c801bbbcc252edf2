// Package hrtf holds a synthetic head-related transfer function database
// and the FFT convolution engine that spatializes mono blocks with it.
//
// The database covers 24 azimuth bins x 12 elevation bins (15 degree grid).
// Each direction stores a left/right pair of complex spectra derived from
// impulse responses that encode interaural time difference (Woodworth's
// model), interaural level difference, and a damped high-frequency
// coloration. The database is built once and read-only afterwards.
package hrtf

import (
	"math"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/soundscape/internal/config"
)

const (
	headRadius   = 0.0875 // meters
	speedOfSound = 343.0  // m/s

	// Impulses sit this far into the response; the far ear's impulse is
	// delayed a further half ITD from here.
	baseOffset = 100
)

// Filter is one direction's spectra pair plus the grid direction it
// was stored under.
type Filter struct {
	L, R      []complex128
	Azimuth   float64
	Elevation float64
}

type Database struct {
	sampleRate   int
	fftSize      int
	filterLength int
	numAzimuth   int
	numElevation int

	azStep float64
	elStep float64

	filters []Filter // elevation-major: index el*numAzimuth + az
}

func NewDatabase(sampleRate int, cfg config.HRTFConfig) *Database {
	db := &Database{
		sampleRate:   sampleRate,
		fftSize:      cfg.FFTSize,
		filterLength: cfg.FilterLength,
		numAzimuth:   cfg.NumAzimuth,
		numElevation: cfg.NumElevation,
		azStep:       360.0 / float64(cfg.NumAzimuth),
		elStep:       180.0 / float64(cfg.NumElevation),
		filters:      make([]Filter, cfg.NumAzimuth*cfg.NumElevation),
	}
	for el := 0; el < db.numElevation; el++ {
		elevation := float64(el)*db.elStep - 90
		for az := 0; az < db.numAzimuth; az++ {
			azimuth := float64(az) * db.azStep
			db.filters[el*db.numAzimuth+az] = db.synthesize(azimuth, elevation)
		}
	}
	return db
}

func (d *Database) FFTSize() int { return d.fftSize }

// ITDSamples is the interaural time difference for an azimuth, in
// samples at the database rate. Positive means the left ear lags.
func (d *Database) ITDSamples(azimuth float64) int {
	theta := rad(math.Mod(azimuth, 180))
	itd := (headRadius / speedOfSound) * (theta + math.Sin(theta))
	if azimuth > 180 {
		itd = -itd
	}
	return int(math.Round(itd * float64(d.sampleRate)))
}

// ILD is the contralateral level factor: 1 at azimuth 0, 0 at 180.
func ILD(azimuth float64) float64 {
	return 0.5 + 0.5*math.Cos(rad(azimuth))
}

func (d *Database) synthesize(azimuth, elevation float64) Filter {
	itd := d.ITDSamples(azimuth)
	ild := ILD(azimuth)

	irL := make([]float64, d.fftSize)
	irR := make([]float64, d.fftSize)

	// Positive ITD means the source sits to the right: the left ear is
	// the far ear, so it takes both the arrival delay and the shadow
	// attenuation. Mirrored for negative ITD.
	idxL, idxR := baseOffset, baseOffset
	ampL, ampR := 1.0, 1.0
	if itd > 0 {
		idxL += itd / 2
		ampL = ild
	} else if itd < 0 {
		idxR += -itd / 2
		ampR = ild
	}
	irL[idxL] = ampL
	irR[idxR] = ampR

	for t := 0; t < d.filterLength; t++ {
		ft := float64(t)
		hf := 0.05 * math.Exp(-ft/100) * math.Sin(2*math.Pi*7000*ft/float64(d.sampleRate))
		irL[t] += hf
		irR[t] += hf
	}

	return Filter{
		L:         fft.FFTReal(irL),
		R:         fft.FFTReal(irR),
		Azimuth:   azimuth,
		Elevation: elevation,
	}
}

// Nearest snaps a direction to the grid. Azimuth wraps mod 360,
// elevation clamps to [-90, 90].
func (d *Database) Nearest(azimuth, elevation float64) Filter {
	az := math.Mod(azimuth, 360)
	if az < 0 {
		az += 360
	}
	azIdx := int(math.Round(az/d.azStep)) % d.numAzimuth
	elIdx := int(math.Round((elevation + 90) / d.elStep))
	if elIdx < 0 {
		elIdx = 0
	}
	if elIdx > d.numElevation-1 {
		elIdx = d.numElevation - 1
	}
	return d.filters[elIdx*d.numAzimuth+azIdx]
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
