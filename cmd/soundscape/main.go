package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang/geo/r3"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/soundscape/internal/config"
	"github.com/san-kum/soundscape/internal/engine"
	"github.com/san-kum/soundscape/internal/hrtf"
	"github.com/san-kum/soundscape/internal/imu"
	"github.com/san-kum/soundscape/internal/source"
	"github.com/san-kum/soundscape/internal/spatial"
)

var (
	configFile string
	assetsDir  string
	duration   float64
	seed       int64
	// probe parameters
	blocks int
	srcX   float64
	srcY   float64
	srcZ   float64
	tone   float64
	// hrtf inspection
	azimuth   float64
	elevation float64
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "soundscape",
})

func main() {
	rootCmd := &cobra.Command{
		Use:   "soundscape",
		Short: "position-responsive 3d binaural audio renderer",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "render the scene to the default audio device",
		RunE:  runScene,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&assetsDir, "assets", ".", "directory holding source audio files")
	runCmd.Flags().Float64Var(&duration, "time", 0, "seconds to run (0 = until interrupted)")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "sensor simulator seed")

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "render a test tone offline and plot the output",
		RunE:  probeScene,
	}
	probeCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	probeCmd.Flags().IntVar(&blocks, "blocks", 8, "number of blocks to render")
	probeCmd.Flags().Float64Var(&srcX, "x", 0, "source x (meters)")
	probeCmd.Flags().Float64Var(&srcY, "y", 1, "source y (meters, forward)")
	probeCmd.Flags().Float64Var(&srcZ, "z", 0, "source z (meters)")
	probeCmd.Flags().Float64Var(&tone, "tone", 440, "test tone frequency (hz)")

	hrtfCmd := &cobra.Command{
		Use:   "hrtf",
		Short: "inspect the synthetic hrtf grid",
		RunE:  inspectHRTF,
	}
	hrtfCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	hrtfCmd.Flags().Float64Var(&azimuth, "az", 0, "azimuth (degrees)")
	hrtfCmd.Flags().Float64Var(&elevation, "el", 0, "elevation (degrees)")

	rootCmd.AddCommand(runCmd, probeCmd, hrtfCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configFile)
}

// defaultScene is the five-source demo layout.
func defaultScene(cfg *config.Config) *source.Bank {
	assets := []struct {
		name string
		pos  r3.Vector
		file string
	}{
		{"Forest", r3.Vector{X: 4, Y: 4, Z: 3}, "forest.mp3"},
		{"River", r3.Vector{X: 3, Y: -4, Z: 0.2}, "river.mp3"},
		{"Night", r3.Vector{X: -5, Y: 2, Z: 0.5}, "night.mp3"},
		{"Wind", r3.Vector{Z: 12}, "wind.mp3"},
		{"Leaves", r3.Vector{Y: 1}, "leaves.mp3"},
	}
	sources := make([]*source.Source, 0, len(assets))
	for _, a := range assets {
		samples := source.LoadOrSilence(a.name, filepath.Join(assetsDir, a.file), cfg.SampleRate, logger)
		sources = append(sources, source.NewSource(a.name, a.pos, samples))
	}
	return source.NewBank(cfg.BlockSize, sources...)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bank := defaultScene(cfg)
	sensor := imu.New(seed)

	eng, err := engine.New(cfg, bank, sensor, logger)
	if err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}
	defer eng.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var timeout <-chan time.Time
	if duration > 0 {
		timeout = time.After(time.Duration(duration * float64(time.Second)))
	}

	status := time.NewTicker(2 * time.Second)
	defer status.Stop()

	for {
		select {
		case <-sig:
			logger.Info("interrupted")
			return nil
		case <-timeout:
			return nil
		case <-status.C:
			p := eng.Pose()
			st := eng.TimerStats()
			lvL, lvR := eng.Levels()
			logger.Info("pose",
				"x", fmt.Sprintf("%.2f", p.Position.X),
				"y", fmt.Sprintf("%.2f", p.Position.Y),
				"z", fmt.Sprintf("%.2f", p.Position.Z),
				"jitter", st.LastJitter,
				"peak_l", fmt.Sprintf("%.3f", lvL.Value()),
				"peak_r", fmt.Sprintf("%.3f", lvR.Value()),
			)
			lvL.Reset()
			lvR.Reset()
		}
	}
}

func probeScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	samples := make([]float64, cfg.BlockSize*blocks)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*tone*float64(i)/float64(cfg.SampleRate))
	}
	bank := source.NewBank(cfg.BlockSize,
		source.NewSource("probe", r3.Vector{X: srcX, Y: srcY, Z: srcZ}, samples))

	eng, err := engine.New(cfg, bank, imu.New(0), logger)
	if err != nil {
		return err
	}

	l, r := eng.RenderBlocks(blocks, r3.Vector{}, spatial.Identity())

	fmt.Printf("left  (peak %.4f):\n%s\n", peak(l), asciigraph.Plot(envelope(l, 80), asciigraph.Height(8)))
	fmt.Printf("right (peak %.4f):\n%s\n", peak(r), asciigraph.Plot(envelope(r, 80), asciigraph.Height(8)))
	return nil
}

func inspectHRTF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db := hrtf.NewDatabase(cfg.SampleRate, cfg.HRTF)
	f := db.Nearest(azimuth, elevation)
	fmt.Printf("requested (%.1f, %.1f) -> grid (%.1f, %.1f)\n", azimuth, elevation, f.Azimuth, f.Elevation)
	fmt.Printf("itd %d samples, ild %.3f\n", db.ITDSamples(f.Azimuth), hrtf.ILD(f.Azimuth))
	return nil
}

func peak(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// envelope downsamples to n points of windowed absolute peaks, enough
// for a terminal plot.
func envelope(x []float64, n int) []float64 {
	if len(x) <= n {
		return x
	}
	out := make([]float64, n)
	win := len(x) / n
	for i := 0; i < n; i++ {
		m := 0.0
		for j := i * win; j < (i+1)*win && j < len(x); j++ {
			if a := math.Abs(x[j]); a > m {
				m = a
			}
		}
		out[i] = m
	}
	return out
}
