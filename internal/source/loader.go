package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/go-mp3"
)

// ErrSourceLoad marks a source whose samples could not be supplied.
var ErrSourceLoad = errors.New("source: load failed")

// silenceSeconds of zeros stand in for a source that failed to load.
const silenceSeconds = 5

// LoadMP3 decodes a file to mono float64 samples at targetRate. The
// decoder emits 16-bit little-endian stereo at its native rate; we
// downmix and linearly resample.
func LoadMP3(path string, targetRate int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceLoad, path, err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceLoad, path, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceLoad, path, err)
	}

	// Interleaved L/R int16 pairs to mono.
	mono := make([]float64, len(raw)/4)
	for i := range mono {
		l := int16(uint16(raw[4*i]) | uint16(raw[4*i+1])<<8)
		r := int16(uint16(raw[4*i+2]) | uint16(raw[4*i+3])<<8)
		mono[i] = (float64(l) + float64(r)) / 2 / 32768
	}

	if dec.SampleRate() == targetRate || len(mono) < 2 {
		return mono, nil
	}
	return resampleLinear(mono, dec.SampleRate(), targetRate), nil
}

func resampleLinear(in []float64, fromRate, toRate int) []float64 {
	n := int(float64(len(in)) * float64(toRate) / float64(fromRate))
	out := make([]float64, n)
	step := float64(len(in)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}

// Silence returns the zero-sample fallback buffer.
func Silence(sampleRate int) []float64 {
	return make([]float64, sampleRate*silenceSeconds)
}

// LoadOrSilence loads a source file, substituting silence with a
// warning when the file cannot be decoded. Rendering continues either
// way.
func LoadOrSilence(name, path string, sampleRate int, logger *log.Logger) []float64 {
	samples, err := LoadMP3(path, sampleRate)
	if err != nil {
		logger.Warn("substituting silence for source", "source", name, "err", err)
		return Silence(sampleRate)
	}
	return samples
}
