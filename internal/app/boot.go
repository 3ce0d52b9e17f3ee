package app

import (
	"fmt"
	"log/slog"

	"telwire/internal/config"
	"telwire/internal/logger"
	"telwire/internal/metrics"
	"telwire/internal/nodes"
	"telwire/pkg/telnet"
)

var Version = "dev"

var (
	Config  *config.Config
	Logger  *slog.Logger
	Nodes   *nodes.Manager
	Metrics *metrics.Metrics

	// Options is the default compatibility table. Connections work on clones.
	Options *telnet.Table
)

func Boot(configPath string, quiet bool) error {
	if configPath == "" {
		configPath = "config/example.yml"
	}

	// Load the configuration
	newConfig, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// If all successful, swap globals.
	Config = newConfig
	Options = newConfig.Table()

	// Setup Logger
	Logger = logger.Setup(Config.Loggers, Config.Debug, quiet)

	// Slots and collectors survive a reload; connected nodes keep their slot.
	if Nodes == nil {
		Nodes = nodes.NewManager(Config.MaxNodes)
	}
	if Metrics == nil && Config.Metrics.Enabled {
		Metrics = metrics.New(Config.Metrics.Namespace)
	}

	if !quiet {
		Logger.Info("Successfully loaded configuration", "file", configPath, "options", len(Config.Options))
	}

	return nil
}
