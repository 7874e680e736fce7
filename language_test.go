package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTagForPath(t *testing.T) {
	table := defaultLanguageTable()
	tests := []struct {
		path string
		want string
	}{
		{"main.py", "python"},
		{"app.js", "javascript"},
		{"config.yml", "yaml"},
		{"config.yaml", "yaml"},
		{"script.sh", "bash"},
		{"gem.rb", "ruby"},
		{"unknown.xyz", ""},
		{"no_extension", ""},
	}
	for _, tt := range tests {
		if got := table.TagForPath(tt.path); got != tt.want {
			t.Fatalf("TagForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages.yml")
	overrides := `rust:
  extensions:
    - ".rs"
go:
  extensions:
    - go
`
	if err := os.WriteFile(path, []byte(overrides), 0o644); err != nil {
		t.Fatal(err)
	}

	table := defaultLanguageTable()
	if err := table.applyOverrides(path); err != nil {
		t.Fatalf("applyOverrides: %v", err)
	}

	if got := table.TagForPath("lib.rs"); got != "rust" {
		t.Fatalf("TagForPath(lib.rs) = %q, want rust", got)
	}
	if got := table.TagForPath("main.go"); got != "go" {
		t.Fatalf("TagForPath(main.go) = %q, want go", got)
	}
	// Built-ins survive overrides.
	if got := table.TagForPath("main.py"); got != "python" {
		t.Fatalf("TagForPath(main.py) = %q, want python", got)
	}
}

func TestApplyOverridesBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "languages.yml")
	if err := os.WriteFile(path, []byte(":\n  - not valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	table := defaultLanguageTable()
	if err := table.applyOverrides(path); err == nil {
		t.Fatal("expected parse error")
	}
	if got := table.TagForPath("main.py"); got != "python" {
		t.Fatalf("defaults must survive a failed override load, got %q", got)
	}
}
