// Package source owns the per-source sample buffers and read cursors.
// Sources are fixed at init and loop indefinitely; the bank hands the
// renderer one chunk per source per block.
package source

import (
	"github.com/golang/geo/r3"

	"github.com/san-kum/soundscape/internal/dsp"
)

type Source struct {
	Name     string
	Position r3.Vector

	samples []float64
	cursor  int
}

func NewSource(name string, pos r3.Vector, samples []float64) *Source {
	return &Source{Name: name, Position: pos, samples: samples}
}

func (s *Source) Len() int    { return len(s.samples) }
func (s *Source) Cursor() int { return s.cursor }

// NextChunk fills dst with the next samples. A source whose length is
// an exact multiple of the chunk size loops seamlessly; otherwise the
// final partial chunk is zero-padded (one block of seam silence) and
// the cursor rewinds.
func (s *Source) NextChunk(dst []float64) {
	n := len(dst)
	if s.cursor+n <= len(s.samples) {
		copy(dst, s.samples[s.cursor:s.cursor+n])
		s.cursor += n
		if s.cursor == len(s.samples) {
			s.cursor = 0
		}
		return
	}
	tail := copy(dst, s.samples[s.cursor:])
	for i := tail; i < n; i++ {
		dst[i] = 0
	}
	s.cursor = 0
}

// Bank holds the scene's sources and the preallocated chunk buffers the
// audio callback reads into. Source order is stable across Collect
// calls.
type Bank struct {
	sources []*Source
	chunks  []dsp.SourceChunk
}

func NewBank(blockSize int, sources ...*Source) *Bank {
	b := &Bank{
		sources: sources,
		chunks:  make([]dsp.SourceChunk, len(sources)),
	}
	for i, s := range sources {
		b.chunks[i] = dsp.SourceChunk{
			Samples:  make([]float64, blockSize),
			Position: s.Position,
		}
	}
	return b
}

func (b *Bank) Sources() []*Source { return b.sources }

// Collect advances every cursor by one block and returns the chunk
// list. The returned slice and its buffers are reused each call.
func (b *Bank) Collect() []dsp.SourceChunk {
	for i, s := range b.sources {
		s.NextChunk(b.chunks[i].Samples)
	}
	return b.chunks
}
