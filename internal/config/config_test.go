package config

import (
	"os"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8080" {
		t.Errorf("ServerURL = %q, want the default", cfg.ServerURL)
	}
	if cfg.Theme != "nord" {
		t.Errorf("Theme = %q, want nord", cfg.Theme)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{ServerURL: "https://board.example.com", Theme: "dracula", LogLevel: "debug"}

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL || loaded.Theme != cfg.Theme || loaded.LogLevel != cfg.LogLevel {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestEnvOverridesServerURL(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{ServerURL: "http://from-file:8080"}
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	os.Setenv("TASKDECK_SERVER", "http://from-env:9090")
	defer os.Unsetenv("TASKDECK_SERVER")

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ServerURL != "http://from-env:9090" {
		t.Errorf("ServerURL = %q, want the env override", loaded.ServerURL)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir), []byte("server_url: [not: closed"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
