package configwatcher

import "github.com/bft-labs/framebridge/pkg/bridge"

// WithConfigWatcher returns a bridge Option that reloads cfg.Path on change.
//
// Usage:
//
//	b, err := bridge.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:     "/etc/framebridge/config.toml",
//	        OnReload: func(c cliconfig.Config) { reloads <- c },
//	    }),
//	)
func WithConfigWatcher(cfg Config) bridge.Option {
	return bridge.WithPlugin(New(cfg))
}
