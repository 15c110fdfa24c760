package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	for _, k := range []string{"LISTEN_ADDR", "CACHE_BACKEND", "MAX_UPLOAD_MB", "SNAPSHOT_TIMEOUT_SEC"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.ListenAddr != ":8080" || cfg.CacheBackend != "file" || cfg.MaxUploadMB != 32 {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.MaxUploadBytes() != 32<<20 {
		t.Errorf("MaxUploadBytes: got %d", cfg.MaxUploadBytes())
	}
	if cfg.SnapshotTimeout() != 30*time.Second {
		t.Errorf("SnapshotTimeout: got %v", cfg.SnapshotTimeout())
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	yaml := "listen_addr: \":9000\"\ncache_backend: sqlite\nchart_width: 800\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CHART_HEIGHT", "not-a-number")

	cfg := Load()
	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr from YAML: got %q", cfg.ListenAddr)
	}
	if cfg.CacheBackend != "memory" {
		t.Errorf("env should override YAML, got %q", cfg.CacheBackend)
	}
	if cfg.ChartWidth != 800 {
		t.Errorf("ChartWidth: got %d", cfg.ChartWidth)
	}
	if cfg.ChartHeight != 360 {
		t.Errorf("bad int env should fall back, got %d", cfg.ChartHeight)
	}
}

func TestDSN(t *testing.T) {
	cfg := Defaults()
	cfg.PostgresPassword = "secret"
	want := "host=localhost port=5432 user=dashboard password=secret dbname=dashboard sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
