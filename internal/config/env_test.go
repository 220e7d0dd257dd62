package config

import "testing"

func TestBuildEnvMapReadsPrefixedVars(t *testing.T) {
	t.Setenv(EnvRoot, "/work/root")
	t.Setenv(EnvWorkers, "8")
	t.Setenv(EnvPollInterval, "250ms")
	t.Setenv(EnvLogFormat, "json")

	m := buildEnvMap()

	if m["root"] != "/work/root" {
		t.Fatalf("root = %v, want /work/root", m["root"])
	}
	if m["workers"] != 8 {
		t.Fatalf("workers = %v, want 8", m["workers"])
	}
	if m["poll_interval"] != "250ms" {
		t.Fatalf("poll_interval = %v, want 250ms", m["poll_interval"])
	}
	if m["log_format"] != "json" {
		t.Fatalf("log_format = %v, want json", m["log_format"])
	}
}

func TestBuildEnvMapReadsUnprefixedStressVars(t *testing.T) {
	t.Setenv(EnvStressSeed, "42")
	t.Setenv(EnvStressIterations, "500")
	t.Setenv(EnvStressOperations, "30")
	t.Setenv(EnvStressInitial, "100")

	m := buildEnvMap()

	if m["stress.seed"] != int64(42) {
		t.Fatalf("stress.seed = %v, want 42", m["stress.seed"])
	}
	if m["stress.iterations"] != 500 {
		t.Fatalf("stress.iterations = %v, want 500", m["stress.iterations"])
	}
	if m["stress.operations"] != 30 {
		t.Fatalf("stress.operations = %v, want 30", m["stress.operations"])
	}
	if m["stress.initial_entries"] != 100 {
		t.Fatalf("stress.initial_entries = %v, want 100", m["stress.initial_entries"])
	}
}

func TestBuildEnvMapSkipsUnsetAndMalformedVars(t *testing.T) {
	t.Setenv(EnvWorkers, "not-a-number")

	m := buildEnvMap()

	if _, ok := m["root"]; ok {
		t.Fatalf("expected root absent when WORKTREECTL_ROOT is unset, got %v", m["root"])
	}
	if _, ok := m["workers"]; ok {
		t.Fatalf("expected a malformed WORKTREECTL_WORKERS to be skipped, got %v", m["workers"])
	}
}
