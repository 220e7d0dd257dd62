package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"
)

// ResolveOptions configures the multi-source configuration resolution.
type ResolveOptions struct {
	// CLIFlags holds explicit CLI flag overrides (highest precedence).
	// Keys are flat Config field names: "root", "workers", "poll_interval".
	CLIFlags map[string]any
}

// Resolve runs the 3-layer configuration resolution pipeline:
//  1. Built-in defaults (DefaultConfig)
//  2. Environment variables (WORKTREECTL_* and the stress-test env vars)
//  3. CLI flags (highest precedence)
func Resolve(opts ResolveOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfigMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}
	if err := k.Load(confmap.Provider(buildEnvMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}
	if len(opts.CLIFlags) > 0 {
		if err := k.Load(confmap.Provider(opts.CLIFlags, "."), nil); err != nil {
			return nil, fmt.Errorf("loading CLI flag overrides: %w", err)
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("decoding resolved config: %w", err)
	}
	return &cfg, nil
}

func defaultConfigMap() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"workers":                d.Workers,
		"poll_interval":          d.PollInterval,
		"log_format":             d.LogFormat,
		"stress.seed":            d.Stress.Seed,
		"stress.iterations":      d.Stress.Iterations,
		"stress.operations":      d.Stress.Operations,
		"stress.initial_entries": d.Stress.InitialEntries,
	}
}
