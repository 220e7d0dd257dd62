package config

import (
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	d := DefaultConfig()

	if d.Workers != 16 {
		t.Fatalf("expected default worker count 16 (spec.md §4.8), got %d", d.Workers)
	}
	if d.PollInterval != 100*time.Millisecond {
		t.Fatalf("expected default poll interval 100ms, got %v", d.PollInterval)
	}
	if d.LogFormat != "text" {
		t.Fatalf("expected default log format \"text\", got %q", d.LogFormat)
	}
	if d.Stress.Seed != 1 || d.Stress.Iterations != 100 || d.Stress.Operations != 20 || d.Stress.InitialEntries != 40 {
		t.Fatalf("unexpected default stress config: %+v", d.Stress)
	}
}
