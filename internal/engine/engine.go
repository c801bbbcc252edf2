// Package engine wires the soundscape together: the source bank and
// renderer on the audio task, pose fusion on the 100 Hz control task,
// and the shared pose cell between them.
package engine

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang/geo/r3"
	"github.com/gordonklaus/portaudio"

	"github.com/san-kum/soundscape/internal/config"
	"github.com/san-kum/soundscape/internal/dsp"
	"github.com/san-kum/soundscape/internal/fusion"
	"github.com/san-kum/soundscape/internal/hrtf"
	"github.com/san-kum/soundscape/internal/metrics"
	"github.com/san-kum/soundscape/internal/source"
	"github.com/san-kum/soundscape/internal/spatial"
	"github.com/san-kum/soundscape/internal/timer"
)

// Sensor supplies one raw pose sample per control tick.
type Sensor interface {
	Sample(elapsed float64) fusion.RawSample
}

type Engine struct {
	cfg      *config.Config
	bank     *source.Bank
	renderer *dsp.Renderer
	fusion   *fusion.Fusion
	ctrl     *timer.Timer
	sensor   Sensor
	logger   *log.Logger

	pose     *SharedPose
	lastPose spatial.Pose // audio-task private snapshot cache

	levelL *metrics.Level
	levelR *metrics.Level

	stream  *portaudio.Stream
	started time.Time
	running bool
}

func New(cfg *config.Config, bank *source.Bank, sensor Sensor, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db := hrtf.NewDatabase(cfg.SampleRate, cfg.HRTF)
	initial := spatial.DefaultPose()
	return &Engine{
		cfg:      cfg,
		bank:     bank,
		renderer: dsp.NewRenderer(cfg, db),
		fusion:   fusion.New(cfg.Kalman, cfg.Fusion),
		ctrl:     timer.New(time.Duration(cfg.Kalman.Dt * float64(time.Second))),
		sensor:   sensor,
		logger:   logger,
		pose:     NewSharedPose(initial),
		lastPose: initial,
		levelL:   metrics.NewLevel("left"),
		levelR:   metrics.NewLevel("right"),
	}, nil
}

// Renderer exposes the pipeline for offline use (probe, tests).
func (e *Engine) Renderer() *dsp.Renderer { return e.renderer }

// Pose is the latest fused pose, for status display.
func (e *Engine) Pose() spatial.Pose { return e.pose.Load() }

// TimerStats reports control-loop jitter diagnostics.
func (e *Engine) TimerStats() timer.Stats { return e.ctrl.Stats() }

// Levels returns the output peak meters since the last reset.
func (e *Engine) Levels() (left, right *metrics.Level) { return e.levelL, e.levelR }

// Start opens the output stream and begins the control loop.
func (e *Engine) Start() error {
	if e.running {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(
		0, 2, float64(e.cfg.SampleRate), e.cfg.BlockSize, e.audioCallback)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	e.stream = stream
	e.started = time.Now()

	e.ctrl.Start(e.controlTick)
	if err := stream.Start(); err != nil {
		// Driver errors never surface as pipeline failures, but a
		// stream that won't start is fatal at startup.
		e.ctrl.Stop()
		stream.Close()
		portaudio.Terminate()
		return err
	}
	e.running = true
	e.logger.Info("engine started",
		"sample_rate", e.cfg.SampleRate,
		"block_size", e.cfg.BlockSize,
		"sources", len(e.bank.Sources()),
		"hrtf_directions", e.cfg.HRTF.NumAzimuth*e.cfg.HRTF.NumElevation,
	)
	return nil
}

// Stop shuts down in dependency order: the control timer first so no
// more pose writes happen, then the audio stream.
func (e *Engine) Stop() {
	if !e.running {
		return
	}
	e.running = false
	e.ctrl.Stop()
	if err := e.stream.Stop(); err != nil {
		e.logger.Warn("audio stream stop", "err", err)
	}
	if err := e.stream.Close(); err != nil {
		e.logger.Warn("audio stream close", "err", err)
	}
	portaudio.Terminate()
	st := e.ctrl.Stats()
	e.logger.Info("engine stopped", "ticks", st.Ticks, "max_jitter", st.MaxJitter)
}

// controlTick runs on the timer goroutine at 100 Hz.
func (e *Engine) controlTick() {
	raw := e.sensor.Sample(time.Since(e.started).Seconds())
	e.pose.Store(e.fusion.Update(raw))
}

// audioCallback runs on the driver's high-priority thread, once per
// block. It reads the shared pose exactly once, renders, and converts
// to the device format. Its buffers are preallocated, except the FFT
// results the renderer's spatializer allocates per source.
func (e *Engine) audioCallback(out [][]float32) {
	pose := e.pose.TryLoad(&e.lastPose)
	chunks := e.bank.Collect()
	l, r := e.renderer.Render(chunks, pose.Position, pose.Orientation)
	e.levelL.Observe(l)
	e.levelR.Observe(r)
	for i := range out[0] {
		out[0][i] = float32(l[i])
		out[1][i] = float32(r[i])
	}
}

// RenderBlocks drives the pipeline offline for n blocks at a fixed
// pose, concatenating the per-block channels.
func (e *Engine) RenderBlocks(n int, pos r3.Vector, quat spatial.Quaternion) (l, r []float64) {
	l = make([]float64, 0, n*e.cfg.BlockSize)
	r = make([]float64, 0, n*e.cfg.BlockSize)
	for i := 0; i < n; i++ {
		bl, br := e.renderer.Render(e.bank.Collect(), pos, quat)
		l = append(l, bl...)
		r = append(r, br...)
	}
	return l, r
}
