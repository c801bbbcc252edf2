// Package dsp is the block renderer: per-source geometry, Doppler and
// HRTF stages feeding a stereo mix that runs through EQ, reverb and
// crosstalk cancellation. One Render call produces one output block. The
// mix, scaling, Doppler, reverb and spatializer buffers are sized at
// construction; the spatializer's forward and inverse FFT calls still
// allocate their transform results on every source of every block.
package dsp

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/soundscape/internal/config"
	"github.com/san-kum/soundscape/internal/hrtf"
	"github.com/san-kum/soundscape/internal/spatial"
)

// SourceChunk is one source's contribution to a block: its next mono
// samples and its fixed world position.
type SourceChunk struct {
	Samples  []float64
	Position r3.Vector
}

type Renderer struct {
	blockSize int

	spat    *hrtf.Spatializer
	doppler *Doppler
	eq      EQ
	revL    *Reverb
	revR    *Reverb
	ctc     Crosstalk

	mixL   []float64
	mixR   []float64
	scaled []float64
}

func NewRenderer(cfg *config.Config, db *hrtf.Database) *Renderer {
	return &Renderer{
		blockSize: cfg.BlockSize,
		spat:      hrtf.NewSpatializer(db, cfg.BlockSize),
		doppler:   NewDoppler(cfg.BlockSize),
		eq:        NewEQ(),
		revL:      NewReverb(cfg.ReverbBufferLen(), cfg.Reverb.Decay),
		revR:      NewReverb(cfg.ReverbBufferLen(), cfg.Reverb.Decay),
		ctc:       NewCrosstalk(cfg.CTC.Alpha),
		mixL:      make([]float64, cfg.BlockSize),
		mixR:      make([]float64, cfg.BlockSize),
		scaled:    make([]float64, cfg.BlockSize),
	}
}

// SetEQ replaces the room correction band gains.
func (rd *Renderer) SetEQ(eq EQ) { rd.eq = eq }

// ReverbCursors reports both write cursors, for invariant checks.
func (rd *Renderer) ReverbCursors() (int, int) { return rd.revL.Pos(), rd.revR.Pos() }

// Render produces one stereo block for the listener pose. The returned
// slices are owned by the renderer and valid until the next call.
func (rd *Renderer) Render(sources []SourceChunk, listenerPos r3.Vector, listenerQuat spatial.Quaternion) (l, r []float64) {
	for i := 0; i < rd.blockSize; i++ {
		rd.mixL[i] = 0
		rd.mixR[i] = 0
	}

	inv := listenerQuat.Inverse()

	for _, src := range sources {
		// Source direction in the head frame; forward is +y.
		local := inv.Rotate(src.Position.Sub(listenerPos))
		dist := local.Norm()
		if dist < 0.1 {
			dist = 0.1
		}
		azimuth := deg(math.Atan2(local.X, local.Y))
		elevation := deg(math.Asin(local.Z / dist))

		att := 1.0 / (dist + 1.0)
		for i, v := range src.Samples {
			rd.scaled[i] = v * att
		}

		// Sources are static for now; the radial velocity hook stays.
		chunk := rd.doppler.Apply(rd.scaled, 0.0)

		sl, sr := rd.spat.Apply(chunk, azimuth, elevation)
		for i := 0; i < rd.blockSize; i++ {
			rd.mixL[i] += sl[i]
			rd.mixR[i] += sr[i]
		}
	}

	rd.eq.Apply(rd.mixL)
	rd.eq.Apply(rd.mixR)
	rd.revL.Process(rd.mixL)
	rd.revR.Process(rd.mixR)
	rd.ctc.Process(rd.mixL, rd.mixR)

	return rd.mixL, rd.mixR
}

func deg(rad float64) float64 { return rad * 180 / math.Pi }
