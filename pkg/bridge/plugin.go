package bridge

import (
	"context"

	"github.com/bft-labs/framebridge/pkg/log"
)

// Plugin extends a Bridge with optional behavior. Plugins are initialized
// in registration order on Start and shut down in reverse order on Stop.
type Plugin interface {
	Name() string

	// Initialize runs during Start. ctx is canceled when the bridge stops.
	// An error aborts Start and leaves the bridge crashed.
	Initialize(ctx context.Context, cfg PluginConfig) error

	Shutdown(ctx context.Context) error
}

// PluginConfig is the bridge context handed to plugins.
type PluginConfig struct {
	Port      string
	Topic     string
	StatusDir string
	Logger    log.Logger
}
