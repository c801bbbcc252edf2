package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 96000, cfg.SampleRate)
	assert.Equal(t, 1024, cfg.BlockSize)
	assert.Equal(t, 2048, cfg.HRTF.FFTSize)
	assert.Equal(t, 24, cfg.HRTF.NumAzimuth)
	assert.Equal(t, 12, cfg.HRTF.NumElevation)
	assert.Equal(t, 0.4, cfg.Reverb.Decay)
	assert.Equal(t, 0.7, cfg.CTC.Alpha)
	assert.Equal(t, 0.01, cfg.Kalman.Dt)
	assert.Equal(t, 0.9, cfg.Fusion.AlphaOrientation)
	assert.NoError(t, cfg.Validate())
}

func TestReverbBufferLen(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 48000, cfg.ReverbBufferLen())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero block", func(c *Config) { c.BlockSize = 0 }},
		{"block too large for reverb", func(c *Config) { c.Reverb.BufferSeconds = 0.01 }},
		{"fft shorter than filter", func(c *Config) { c.HRTF.FFTSize = 512 }},
		{"empty grid", func(c *Config) { c.HRTF.NumAzimuth = 0 }},
		{"runaway decay", func(c *Config) { c.Reverb.Decay = 1.0 }},
		{"zero dt", func(c *Config) { c.Kalman.Dt = 0 }},
		{"alpha out of range", func(c *Config) { c.Fusion.AlphaOrientation = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfig))
		})
	}
}

func TestLoadSaveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Reverb.Decay = 0.25
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, loaded.Reverb.Decay)
	assert.Equal(t, 96000, loaded.SampleRate)
}

func TestLoadPartialOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sample_rate: 48000\nblock_size: 512\n"), 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, loaded.SampleRate)
	assert.Equal(t, 512, loaded.BlockSize)
	assert.Equal(t, 2048, loaded.HRTF.FFTSize)
	assert.Equal(t, 0.4, loaded.Reverb.Decay)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("studio")
	if cfg == nil {
		t.Fatal("expected studio preset")
	}
	assert.NoError(t, cfg.Validate())

	draft := GetPreset("draft")
	if draft == nil {
		t.Fatal("expected draft preset")
	}
	assert.Equal(t, 48000, draft.SampleRate)
	assert.NoError(t, draft.Validate())

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	assert.NotEmpty(t, ListPresets())
}
