package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSampleRate       = 96000
	DefaultBlockSize        = 1024
	DefaultFFTSize          = 2048
	DefaultFilterLength     = 1024
	DefaultNumAzimuth       = 24
	DefaultNumElevation     = 12
	DefaultReverbDecay      = 0.4
	DefaultReverbSeconds    = 0.5
	DefaultCTCAlpha         = 0.7
	DefaultKalmanDt         = 0.01
	DefaultProcessNoise     = 0.01
	DefaultMeasurementNoise = 0.0225
	DefaultOrientationAlpha = 0.9
)

type Config struct {
	SampleRate int          `yaml:"sample_rate"`
	BlockSize  int          `yaml:"block_size"`
	HRTF       HRTFConfig   `yaml:"hrtf"`
	Reverb     ReverbConfig `yaml:"reverb"`
	CTC        CTCConfig    `yaml:"ctc"`
	Kalman     KalmanConfig `yaml:"kalman"`
	Fusion     FusionConfig `yaml:"fusion"`
}

type HRTFConfig struct {
	FFTSize      int `yaml:"fft_size"`
	FilterLength int `yaml:"filter_length"`
	NumAzimuth   int `yaml:"num_azimuth"`
	NumElevation int `yaml:"num_elevation"`
}

type ReverbConfig struct {
	Decay         float64 `yaml:"decay"`
	BufferSeconds float64 `yaml:"buffer_seconds"`
}

type CTCConfig struct {
	Alpha float64 `yaml:"alpha"`
}

type KalmanConfig struct {
	Dt               float64 `yaml:"dt"`
	ProcessNoise     float64 `yaml:"process_noise"`
	MeasurementNoise float64 `yaml:"measurement_noise"`
}

type FusionConfig struct {
	AlphaOrientation float64 `yaml:"alpha_orientation"`
}

func DefaultConfig() *Config {
	return &Config{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
		HRTF: HRTFConfig{
			FFTSize:      DefaultFFTSize,
			FilterLength: DefaultFilterLength,
			NumAzimuth:   DefaultNumAzimuth,
			NumElevation: DefaultNumElevation,
		},
		Reverb: ReverbConfig{
			Decay:         DefaultReverbDecay,
			BufferSeconds: DefaultReverbSeconds,
		},
		CTC: CTCConfig{
			Alpha: DefaultCTCAlpha,
		},
		Kalman: KalmanConfig{
			Dt:               DefaultKalmanDt,
			ProcessNoise:     DefaultProcessNoise,
			MeasurementNoise: DefaultMeasurementNoise,
		},
		Fusion: FusionConfig{
			AlphaOrientation: DefaultOrientationAlpha,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReverbBufferLen is the per-channel circular buffer length in samples.
func (c *Config) ReverbBufferLen() int {
	return int(float64(c.SampleRate) * c.Reverb.BufferSeconds)
}

// Validate rejects configurations the pipeline cannot run with. Errors
// here are fatal at startup; nothing past init checks them again.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate %d", ErrConfig, c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block_size %d", ErrConfig, c.BlockSize)
	}
	if 2*c.BlockSize > c.ReverbBufferLen() {
		return fmt.Errorf("%w: block_size %d exceeds half the reverb buffer (%d samples)",
			ErrConfig, c.BlockSize, c.ReverbBufferLen())
	}
	if c.HRTF.FFTSize < c.HRTF.FilterLength || c.HRTF.FFTSize < c.BlockSize {
		return fmt.Errorf("%w: fft_size %d shorter than filter or block", ErrConfig, c.HRTF.FFTSize)
	}
	if c.HRTF.NumAzimuth <= 0 || c.HRTF.NumElevation <= 0 {
		return fmt.Errorf("%w: hrtf grid %dx%d", ErrConfig, c.HRTF.NumAzimuth, c.HRTF.NumElevation)
	}
	if c.Reverb.Decay < 0 || c.Reverb.Decay >= 1 {
		return fmt.Errorf("%w: reverb decay %f", ErrConfig, c.Reverb.Decay)
	}
	if c.Kalman.Dt <= 0 {
		return fmt.Errorf("%w: kalman dt %f", ErrConfig, c.Kalman.Dt)
	}
	if c.Fusion.AlphaOrientation < 0 || c.Fusion.AlphaOrientation > 1 {
		return fmt.Errorf("%w: fusion alpha %f", ErrConfig, c.Fusion.AlphaOrientation)
	}
	return nil
}
