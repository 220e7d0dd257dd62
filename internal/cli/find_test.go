package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, root, rel, contents string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll(%q): %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%q): %v", rel, err)
	}
}

func TestRunFindMatchesSubsequenceQuery(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "src/main.go", "package main\n")
	writeTestFile(t, root, "src/util.go", "package src\n")
	writeTestFile(t, root, "README.md", "hello\n")

	var out bytes.Buffer
	cmd := RootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"find", root, "main"})
	defer cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.Contains(out.String(), "src/main.go") {
		t.Fatalf("expected src/main.go in output, got %q", out.String())
	}
	if strings.Contains(out.String(), "README.md") {
		t.Fatalf("did not expect README.md to match query %q, got %q", "main", out.String())
	}
}

func TestRunFindVisibleOnlyExcludesIgnoredFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, ".gitignore", "secret\n")
	writeTestFile(t, root, "secret/data.go", "x\n")
	writeTestFile(t, root, "data.go", "x\n")

	var out bytes.Buffer
	cmd := RootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"find", root, "data"})
	defer cmd.SetArgs(nil)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if strings.Contains(out.String(), "secret/data.go") {
		t.Fatalf("expected ignored secret/data.go to be excluded by default, got %q", out.String())
	}
	if !strings.Contains(out.String(), "data.go") {
		t.Fatalf("expected visible data.go in output, got %q", out.String())
	}
}
