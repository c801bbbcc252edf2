package config

// Presets are named configurations for common setups. "studio" is the
// full-rate default; "draft" halves the rate and block for quick
// offline checks on slower machines.
var presets = map[string]func() *Config{
	"studio": DefaultConfig,
	"draft": func() *Config {
		cfg := DefaultConfig()
		cfg.SampleRate = 48000
		cfg.BlockSize = 512
		cfg.HRTF.FFTSize = 1024
		cfg.HRTF.FilterLength = 512
		return cfg
	},
}

func GetPreset(name string) *Config {
	f, ok := presets[name]
	if !ok {
		return nil
	}
	return f()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
