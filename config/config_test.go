package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing-config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != "[::1]:8080" {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
	if cfg.MaxFrameBytes != 100*1024*1024 {
		t.Errorf("MaxFrameBytes = %d, want default", cfg.MaxFrameBytes)
	}
}

func TestLoadFromTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := "listen_addr = \"0.0.0.0:9092\"\nliveness_ttl_seconds = 30\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:9092" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "0.0.0.0:9092")
	}
	if cfg.LivenessTTLSeconds != 30 {
		t.Errorf("LivenessTTLSeconds = %d, want 30", cfg.LivenessTTLSeconds)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LACONIA_LISTEN_ADDR", "127.0.0.1:7000")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing-config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7000" {
		t.Errorf("ListenAddr = %q, want env override", cfg.ListenAddr)
	}
}
