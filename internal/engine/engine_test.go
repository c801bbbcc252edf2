package engine

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/golang/geo/r3"

	"github.com/san-kum/soundscape/internal/config"
	"github.com/san-kum/soundscape/internal/fusion"
	"github.com/san-kum/soundscape/internal/source"
	"github.com/san-kum/soundscape/internal/spatial"
)

type stillSensor struct{}

func (stillSensor) Sample(elapsed float64) fusion.RawSample {
	return fusion.RawSample{Pos: r3.Vector{Z: 1.6}, Quat: spatial.Identity()}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BlockSize = 0

	bank := source.NewBank(1024)
	if _, err := New(cfg, bank, stillSensor{}, quietLogger()); !errors.Is(err, config.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestRenderBlocksOffline(t *testing.T) {
	cfg := config.DefaultConfig()
	bank := source.NewBank(cfg.BlockSize,
		source.NewSource("quiet", r3.Vector{Y: 1}, make([]float64, cfg.BlockSize*2)))

	eng, err := New(cfg, bank, stillSensor{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	l, r := eng.RenderBlocks(3, r3.Vector{}, spatial.Identity())
	if len(l) != 3*cfg.BlockSize || len(r) != 3*cfg.BlockSize {
		t.Fatalf("rendered %d/%d samples, want %d", len(l), len(r), 3*cfg.BlockSize)
	}
	for i := range l {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("silent source produced output at %d", i)
		}
	}
}
