package executor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRuntimes(t *testing.T) {
	runtimes := DefaultRuntimes()

	py, ok := runtimes["python"]
	if !ok {
		t.Fatal("python runtime missing")
	}
	if py.Extension != "py" || py.Command[0] != "python3" {
		t.Errorf("unexpected python profile: %+v", py)
	}

	js, ok := runtimes["javascript"]
	if !ok {
		t.Fatal("javascript runtime missing")
	}
	if js.Wrapper == "" {
		t.Error("javascript runtime should wrap source for error capture")
	}
}

func TestLoadRuntimes_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtimes.yaml")
	data := `
ruby:
  extension: rb
  command: [ruby]
python:
  extension: py
  command: [python3, -I]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	runtimes, err := LoadRuntimes(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := runtimes["ruby"]; !ok {
		t.Error("added runtime missing")
	}
	if _, ok := runtimes["javascript"]; !ok {
		t.Error("default runtime lost in merge")
	}
	if got := runtimes["python"].Command; len(got) != 2 || got[1] != "-I" {
		t.Errorf("override not applied: %v", got)
	}
}

func TestLoadRuntimes_RejectsEmptyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtimes.yaml")
	if err := os.WriteFile(path, []byte("bad:\n  extension: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRuntimes(path); err == nil {
		t.Error("expected error for runtime without command")
	}
}
