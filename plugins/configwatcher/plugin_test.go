package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/framebridge/internal/cliconfig"
	"github.com/bft-labs/framebridge/pkg/bridge"
	"github.com/bft-labs/framebridge/pkg/log"
)

const baseConfig = `
bootstrap.servers = "localhost:9092"
topic.name = "frames"
`

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type reloads struct {
	mu      sync.Mutex
	configs []cliconfig.Config
}

func (r *reloads) record(cfg cliconfig.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, cfg)
}

func (r *reloads) all() []cliconfig.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cliconfig.Config(nil), r.configs...)
}

func startWatcher(t *testing.T, path string, r *reloads) *Plugin {
	t.Helper()
	p := New(Config{
		Path:          path,
		DebounceDelay: 10 * time.Millisecond,
		OnReload:      r.record,
	})
	if err := p.Initialize(context.Background(), bridge.PluginConfig{Logger: log.NewNoopLogger()}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func waitForReloads(t *testing.T, r *reloads, n int) []cliconfig.Config {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := r.all(); len(got) >= n {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d reloads, got %d", n, len(r.all()))
	return nil
}

func TestPlugin_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, baseConfig)

	r := &reloads{}
	startWatcher(t, path, r)

	writeConfig(t, path, baseConfig+"port = \"/dev/ttyUSB9\"\n")

	got := waitForReloads(t, r, 1)
	if got[0].Port != "/dev/ttyUSB9" {
		t.Errorf("reloaded Port = %q, want /dev/ttyUSB9", got[0].Port)
	}
	if got[0].Topic != "frames" {
		t.Errorf("reloaded Topic = %q, want frames", got[0].Topic)
	}
}

func TestPlugin_IgnoresInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, baseConfig)

	r := &reloads{}
	startWatcher(t, path, r)

	// Missing topic.name fails validation.
	writeConfig(t, path, `bootstrap.servers = "localhost:9092"`)
	time.Sleep(150 * time.Millisecond)
	if n := len(r.all()); n != 0 {
		t.Fatalf("got %d reloads for an invalid file, want 0", n)
	}

	writeConfig(t, path, baseConfig+"baud_rate = 19200\n")
	got := waitForReloads(t, r, 1)
	if got[0].BaudRate != 19200 {
		t.Errorf("reloaded BaudRate = %d, want 19200", got[0].BaudRate)
	}
}

func TestPlugin_IgnoresUnchangedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, baseConfig)

	r := &reloads{}
	startWatcher(t, path, r)

	writeConfig(t, path, baseConfig)
	time.Sleep(150 * time.Millisecond)
	if n := len(r.all()); n != 0 {
		t.Errorf("got %d reloads for identical content, want 0", n)
	}
}

func TestPlugin_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, baseConfig)

	var loads int
	var mu sync.Mutex
	p := New(Config{
		Path:          path,
		DebounceDelay: 10 * time.Millisecond,
		Load: func(string) (cliconfig.Config, error) {
			mu.Lock()
			defer mu.Unlock()
			loads++
			return cliconfig.Config{}, nil
		},
		OnReload: func(cliconfig.Config) {},
	})
	if err := p.Initialize(context.Background(), bridge.PluginConfig{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer p.Shutdown(context.Background())

	writeConfig(t, filepath.Join(dir, "other.toml"), "x = 1")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if loads != 1 {
		t.Errorf("Load called %d times, want 1 (initial snapshot only)", loads)
	}
}

func TestPlugin_DebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, baseConfig)

	r := &reloads{}
	p := New(Config{Path: path, DebounceDelay: 100 * time.Millisecond, OnReload: r.record})
	if err := p.Initialize(context.Background(), bridge.PluginConfig{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer p.Shutdown(context.Background())

	for i := 1; i <= 5; i++ {
		writeConfig(t, path, baseConfig+"buffer_size = "+string(rune('0'+i))+"\n")
		time.Sleep(5 * time.Millisecond)
	}

	got := waitForReloads(t, r, 1)
	time.Sleep(200 * time.Millisecond)
	if n := len(r.all()); n != 1 {
		t.Errorf("got %d reloads for one burst, want 1", n)
	}
	if got[0].BufferSize != 5 {
		t.Errorf("reloaded BufferSize = %d, want 5", got[0].BufferSize)
	}
}

func TestPlugin_DisabledWithoutPath(t *testing.T) {
	p := New(DefaultConfig())
	if err := p.Initialize(context.Background(), bridge.PluginConfig{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestPlugin_MissingDirectory(t *testing.T) {
	p := New(Config{
		Path:     filepath.Join(t.TempDir(), "absent", "config.toml"),
		OnReload: func(cliconfig.Config) {},
	})
	if err := p.Initialize(context.Background(), bridge.PluginConfig{}); err == nil {
		t.Fatal("Initialize expected error for missing directory")
	}
}

func TestPlugin_ShutdownStopsReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, baseConfig)

	r := &reloads{}
	p := New(Config{Path: path, DebounceDelay: 10 * time.Millisecond, OnReload: r.record})
	if err := p.Initialize(context.Background(), bridge.PluginConfig{}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown failed: %v", err)
	}

	writeConfig(t, path, baseConfig+"port = \"/dev/late\"\n")
	time.Sleep(100 * time.Millisecond)
	if n := len(r.all()); n != 0 {
		t.Errorf("got %d reloads after Shutdown, want 0", n)
	}
}

func TestPlugin_Name(t *testing.T) {
	if got := New(DefaultConfig()).Name(); got != "configwatcher" {
		t.Errorf("Name() = %q, want configwatcher", got)
	}
}
