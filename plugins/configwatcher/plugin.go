// Package configwatcher reloads the framebridge configuration file when it
// changes on disk. Each change is debounced, loaded, validated and handed
// to a reload callback; invalid or unchanged files are ignored.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/framebridge/internal/cliconfig"
	"github.com/bft-labs/framebridge/pkg/bridge"
	"github.com/bft-labs/framebridge/pkg/log"
)

// LoadFunc loads and validates the configuration at path.
type LoadFunc func(path string) (cliconfig.Config, error)

// ReloadFunc receives a configuration that differs from the last one seen.
// It runs on the watcher's timer goroutine and must not block on the
// bridge that owns the plugin.
type ReloadFunc func(cfg cliconfig.Config)

// Plugin watches one config file.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration
	load          LoadFunc
	onReload      ReloadFunc

	logger   log.Logger
	last     cliconfig.Config
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the config file to watch.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Load reads the file. Default: cliconfig.Load over cliconfig.DefaultConfig().
	Load LoadFunc

	// OnReload is called with each new valid configuration.
	OnReload ReloadFunc
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.Load == nil {
		cfg.Load = func(path string) (cliconfig.Config, error) {
			return cliconfig.Load(path, cliconfig.DefaultConfig(), nil)
		}
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		load:          cfg.Load,
		onReload:      cfg.OnReload,
		logger:        log.NewNoopLogger(),
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize records the current configuration and starts watching.
func (p *Plugin) Initialize(ctx context.Context, cfg bridge.PluginConfig) error {
	p.mu.Lock()
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	p.mu.Unlock()

	if p.path == "" || p.onReload == nil {
		p.logger.Warn("config watcher disabled: no config file or reload handler")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files by rename, which drops a file watch.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	if current, err := p.load(p.path); err == nil {
		p.mu.Lock()
		p.last = current
		p.mu.Unlock()
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.Info("config watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.debounce != nil {
		p.debounce.Stop()
		p.debounce = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

func (p *Plugin) reload() {
	cfg, err := p.load(p.path)
	if err != nil {
		p.logger.Warn("config reload rejected, keeping current configuration",
			log.String("path", p.path),
			log.Err(err))
		return
	}

	p.mu.Lock()
	unchanged := cfg == p.last
	if !unchanged {
		p.last = cfg
	}
	p.mu.Unlock()

	if unchanged {
		p.logger.Debug("config file touched without changes", log.String("path", p.path))
		return
	}

	p.logger.Info("config reloaded", log.String("path", p.path))
	p.onReload(cfg)
}

// Ensure Plugin implements bridge.Plugin.
var _ bridge.Plugin = (*Plugin)(nil)
