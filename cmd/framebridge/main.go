package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/framebridge/internal/cliconfig"
	"github.com/bft-labs/framebridge/pkg/bridge"
	"github.com/bft-labs/framebridge/pkg/log"
	"github.com/bft-labs/framebridge/plugins/configwatcher"
)

const helpDescription = `
Forward MODBUS RTU frames from a serial port to a Kafka topic.

Every chunk read from the port is treated as one frame. Frames whose trailing
CRC16-MODBUS checksum matches are published verbatim; all others are logged
and dropped.

Highlights:
  - Detects the first available serial port when --port is omitted.
  - Configure via TOML file, FRAMEBRIDGE_* environment variables or flags.
  - Reloads the config file on change and restarts the bridge with it.
  - --simulate emits a valid test frame every few seconds, no hardware needed.
`

var exampleUsage = strings.TrimSpace(`
  framebridge --port /dev/ttyUSB0 --bootstrap-servers localhost:9092 --topic modbus-frames
  framebridge --config $HOME/.framebridge/config.toml --log-level debug
  framebridge --simulate --bootstrap-servers localhost:9092 --topic modbus-frames
`)

var errBridgeCrashed = errors.New("bridge crashed")

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := log.NewConsoleLogger(os.Stderr, zerolog.InfoLevel)

	root := &cobra.Command{
		Use:          "framebridge",
		Short:        "Forward CRC-checked serial frames to Kafka",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// File, then FRAMEBRIDGE_*, never overriding explicit flags.
			load := func(path string) (cliconfig.Config, error) {
				return cliconfig.Load(path, cfg, changed)
			}
			loaded, err := load(cfgFile)
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfgFile, loaded, load)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.framebridge/config.toml)")

	root.Flags().StringVar(&cfg.Port, "port", cfg.Port, "serial port (default: first detected port)")
	root.Flags().IntVar(&cfg.BaudRate, "baud-rate", cfg.BaudRate, "serial baud rate (8N1)")
	root.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "serial read timeout")
	root.Flags().IntVar(&cfg.BufferSize, "buffer-size", cfg.BufferSize, "read buffer size, the largest frame accepted")

	root.Flags().StringVar(&cfg.BootstrapServers, "bootstrap-servers", cfg.BootstrapServers, "comma separated Kafka brokers (bootstrap.servers)")
	root.Flags().StringVar(&cfg.Topic, "topic", cfg.Topic, "Kafka topic (topic.name)")
	root.Flags().StringVar(&cfg.ClientID, "client-id", cfg.ClientID, "Kafka client id")
	root.Flags().StringVar(&cfg.Acks, "acks", cfg.Acks, "required acks: all, leader or none")
	root.Flags().IntVar(&cfg.Retries, "retries", cfg.Retries, "produce retries per frame")
	root.Flags().DurationVar(&cfg.FlushTimeout, "flush-timeout", cfg.FlushTimeout, "time allowed to deliver in-flight frames on shutdown")

	root.Flags().StringVar(&cfg.StatusDir, "status-dir", cfg.StatusDir, "directory for status.json (disabled when empty)")
	root.Flags().DurationVar(&cfg.StatusInterval, "status-interval", cfg.StatusInterval, "status.json write interval")

	root.Flags().BoolVar(&cfg.Simulate, "simulate", cfg.Simulate, "use a simulated port emitting a valid frame periodically")
	root.Flags().DurationVar(&cfg.SimulateInterval, "simulate-interval", cfg.SimulateInterval, "interval between simulated frames")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("framebridge")
		os.Exit(1)
	}
}

// run starts a bridge for cfg and restarts it whenever the config file
// changes. Returns nil on SIGINT/SIGTERM and errBridgeCrashed on a fault.
func run(ctx context.Context, cfgFile string, cfg cliconfig.Config, load configwatcher.LoadFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		level, _ := log.ParseLevel(cfg.LogLevel)
		logger := log.NewConsoleLogger(os.Stderr, level)
		logger.Info().Interface("config", cfg).Msg("configuration")

		reloadCh := make(chan cliconfig.Config, 1)
		crashCh := make(chan struct{}, 1)

		opts := []bridge.Option{
			bridge.WithLogger(log.NewZerologAdapterWithLogger(logger)),
			bridge.WithEventHandler(&crashWatcher{crashed: crashCh}),
		}
		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
				Path:     cfgFile,
				Load:     load,
				OnReload: func(next cliconfig.Config) { offerLatest(reloadCh, next) },
			}))
		}

		b, err := bridge.New(cfg.BridgeConfig(), opts...)
		if err != nil {
			return fmt.Errorf("create bridge: %w", err)
		}
		if err := b.Start(ctx); err != nil {
			return fmt.Errorf("start bridge: %w", err)
		}

		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
			if err := b.Stop(); err != nil {
				return fmt.Errorf("stop bridge: %w", err)
			}
			logStats(logger, b.Stats())
			return nil

		case <-crashCh:
			logger.Error().Msg("bridge crashed, shutting down")
			_ = b.Stop()
			logStats(logger, b.Stats())
			return errBridgeCrashed

		case next := <-reloadCh:
			logger.Info().Msg("configuration changed, restarting bridge")
			if err := b.Stop(); err != nil {
				return fmt.Errorf("stop bridge: %w", err)
			}
			logStats(logger, b.Stats())
			cfg = next
		}
	}
}

// offerLatest replaces any pending value in ch with v.
func offerLatest(ch chan cliconfig.Config, v cliconfig.Config) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func logStats(logger zerolog.Logger, s bridge.Stats) {
	logger.Info().
		Uint64("frames_read", s.FramesRead).
		Uint64("frames_valid", s.FramesValid).
		Uint64("frames_invalid", s.FramesInvalid).
		Uint64("frames_published", s.FramesPublished).
		Uint64("publish_failures", s.PublishFailures).
		Msg("bridge stopped")
}

// crashWatcher signals when the bridge enters StateCrashed.
type crashWatcher struct {
	bridge.BaseEventHandler
	crashed chan struct{}
}

func (w *crashWatcher) OnStateChange(event bridge.StateChangeEvent) {
	if event.Current != bridge.StateCrashed {
		return
	}
	select {
	case w.crashed <- struct{}{}:
	default:
	}
}
