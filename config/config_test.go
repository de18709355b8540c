package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
defaultUri: http://example.invalid/stream.mp3
verbosity: 2
components:
  pulse_sink:
    device: default
`

func TestLoadDecodesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tizonia.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	snap := s.Snapshot()
	if snap.DefaultURI != "http://example.invalid/stream.mp3" {
		t.Fatalf("DefaultURI = %q", snap.DefaultURI)
	}
	if snap.Verbosity != 2 {
		t.Fatalf("Verbosity = %d, want 2", snap.Verbosity)
	}
	if _, ok := s.Component("pulse_sink"); !ok {
		t.Fatalf("expected pulse_sink component config")
	}
}

func TestReloadNotifiesListeners(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tizonia.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	done := make(chan Values, 1)
	s.OnReload(func(v Values) { done <- v })

	if err := os.WriteFile(path, []byte(sampleYAML+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s.reload()

	select {
	case v := <-done:
		if v.DefaultURI != "http://example.invalid/stream.mp3" {
			t.Fatalf("reloaded DefaultURI = %q", v.DefaultURI)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for reload listener")
	}
}
