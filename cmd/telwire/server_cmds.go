package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"telwire/internal/app"
	"telwire/internal/network/telnet"
)

var serverCmd = &cobra.Command{
	Use:              "server",
	Short:            "Start the telnet listener",
	PersistentPreRun: bootAppForServer,
	Run:              startServer,
}

func bootAppForServer(cmd *cobra.Command, args []string) {
	if err := app.Boot(cfgFile, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func startServer(cmd *cobra.Command, args []string) {
	restartChan := make(chan struct{}, 1)
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)

	// Collectors live for the whole process, so the endpoint does too
	metricsServer := startMetrics()
	defer func() {
		if metricsServer != nil {
			metricsServer.Close()
		}
	}()

	for {
		watcher := watchConfig(restartChan)

		var wg sync.WaitGroup
		var telnetServer *telnet.Server

		if !app.Config.Listeners.Telnet.Enabled {
			app.Logger.Warn("No listeners enabled.")
			// Wait for config change or stop
			select {
			case <-stopChan:
				closeWatcher(watcher)
				return
			case <-restartChan:
				closeWatcher(watcher)
				if err := app.Boot(cfgFile, false); err != nil {
					app.Logger.Error("Failed to reload config", "err", err)
				}
				continue
			}
		}

		// Start Telnet Server
		wg.Add(1)
		telnetServer = telnet.NewServer()
		go func() {
			defer wg.Done()
			if err := telnetServer.ListenAndServe(); err != nil {
				app.Logger.Error("Telnet Server stopped", "err", err)
			}
		}()

		// Wait for stop or restart
		select {
		case <-stopChan:
			app.Logger.Info("Shutting down...")
			app.Nodes.Broadcast("Server is shutting down.")
			telnetServer.Stop()
			closeWatcher(watcher)
			return

		case <-restartChan:
			telnetServer.Stop()
			closeWatcher(watcher)

			// Wait for servers to stop
			wg.Wait()

			// Reload Config
			if err := app.Boot(cfgFile, false); err != nil {
				app.Logger.Error("Failed to reload config", "err", err)
				// We continue, which will restart servers with the existing config
				// because Boot did not swap it on failure.
			}
		}
	}
}

// watchConfig signals restart when any loaded config file is written. It
// returns nil when hot reload is off or the watcher cannot be created.
func watchConfig(restart chan<- struct{}) *fsnotify.Watcher {
	if !app.Config.HotReload {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		app.Logger.Error("Failed to create watcher", "err", err)
		return nil
	}

	// Watch all loaded config files
	for _, file := range app.Config.LoadedFiles {
		if err := watcher.Add(file); err != nil {
			app.Logger.Error("Failed to watch config file", "file", relativePath(file), "err", err)
		} else {
			app.Logger.Debug("Watching config file", "file", relativePath(file))
		}
	}

	go func(w *fsnotify.Watcher) {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) {
					continue
				}
				// Check if hot reload is still enabled (in case it was disabled in the new config)
				if !app.Config.HotReload {
					continue
				}

				app.Logger.Info("Config file modified, reloading...", "file", relativePath(event.Name))
				select {
				case restart <- struct{}{}:
				default:
					// restart pending
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				app.Logger.Error("Watcher error", "err", err)
			}
		}
	}(watcher)

	return watcher
}

func closeWatcher(w *fsnotify.Watcher) {
	if w != nil {
		w.Close()
	}
}

// startMetrics serves /metrics when metrics are enabled.
func startMetrics() *http.Server {
	if app.Metrics == nil {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.Metrics.Handler())
	srv := &http.Server{Addr: app.Config.Metrics.Addr, Handler: mux}

	go func() {
		app.Logger.Info("Metrics endpoint listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Metrics server stopped", "err", err)
		}
	}()
	return srv
}

// relativePath makes path relative to the working directory for cleaner logging.
func relativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(cwd, path); err == nil {
		return rel
	}
	return path
}
