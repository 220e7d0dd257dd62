package config

import "time"

// Config holds every tunable a worktreectl invocation needs: the root to
// scan, the scanner's concurrency, and the stress-test knobs the randomized
// convergence harness reads.
type Config struct {
	// Root is the absolute path of the worktree to scan.
	Root string `koanf:"root"`

	// Workers is the fixed scanner worker-pool size.
	Workers int `koanf:"workers"`

	// PollInterval is how often NextScanComplete re-checks scan progress.
	PollInterval time.Duration `koanf:"poll_interval"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	// Verbose and Quiet are decoded from the "verbose" and "quiet" keys.
	// The CLI resolves its log level from its own --verbose/--quiet flags,
	// not from these fields.
	Verbose bool `koanf:"verbose"`
	Quiet   bool `koanf:"quiet"`

	// Stress holds the randomized convergence test's env-var-configurable
	// parameters (spec.md §8 S6): unset fields fall back to Default*.
	Stress StressConfig `koanf:"stress"`
}

// StressConfig configures the randomized mutate-and-rescan convergence test.
type StressConfig struct {
	Seed           int64 `koanf:"seed"`
	Iterations     int   `koanf:"iterations"`
	Operations     int   `koanf:"operations"`
	InitialEntries int   `koanf:"initial_entries"`
}

// DefaultConfig returns the built-in baseline every layer of Resolve starts
// from.
func DefaultConfig() Config {
	return Config{
		Workers:      16,
		PollInterval: 100 * time.Millisecond,
		LogFormat:    "text",
		Stress: StressConfig{
			Seed:           1,
			Iterations:     100,
			Operations:     20,
			InitialEntries: 40,
		},
	}
}
