package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"stagehand-hq/stagehand/pkg/accesslog"
	"stagehand-hq/stagehand/pkg/cli"
	"stagehand-hq/stagehand/pkg/config"
	"stagehand-hq/stagehand/pkg/forwarder"
	"stagehand-hq/stagehand/pkg/livereload"
	"stagehand-hq/stagehand/pkg/origin"
	"stagehand-hq/stagehand/pkg/proxy/handlers"
	"stagehand-hq/stagehand/pkg/resolver"
	"stagehand-hq/stagehand/pkg/server"
	"stagehand-hq/stagehand/pkg/telemetry/health"
	"stagehand-hq/stagehand/pkg/telemetry/logging"
	"stagehand-hq/stagehand/pkg/telemetry/metrics"
	"stagehand-hq/stagehand/pkg/telemetry/tracing"
	"stagehand-hq/stagehand/pkg/watch"
)

var serveFlags struct {
	listenAddress string
	root          string
	originURL     string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development proxy server",
	Long: `Start the development proxy server over the configured content root.

Requests are answered from the local content root when possible, from the
upstream origin otherwise, and with a 404 page when both miss.

Examples:
  # Serve the current directory with defaults
  stagehand serve

  # Serve with a custom config
  stagehand serve --config stagehand.yaml

  # Override the content root and origin
  stagehand serve --root ./site --origin https://main--site--org.aem.page

  # Validate config without starting the server
  stagehand serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.root, "root", "", "override content root directory")
	serveCmd.Flags().StringVar(&serveFlags.originURL, "origin", "", "override upstream origin URL")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Flag overrides
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.root != "" {
		cfg.Content.Root = serveFlags.root
	}
	if serveFlags.originURL != "" {
		cfg.Proxy.Origin = serveFlags.originURL
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(&cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	// An unset origin is derived from the git checkout at the content
	// root. Without either, the fallback chain has nowhere to go.
	if cfg.Proxy.Origin == "" {
		detected, err := origin.Detect(cfg.Content.Root, cfg.Proxy.PreviewDomain)
		if err != nil {
			return cli.NewConfigError("proxy.origin",
				fmt.Sprintf("not configured and not derivable from a git checkout: %v", err))
		}
		cfg.Proxy.Origin = detected
	}

	if serveFlags.dryRun {
		fmt.Println("Configuration valid")
		fmt.Printf("  listen:  %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  root:    %s\n", cfg.Content.Root)
		fmt.Printf("  origin:  %s\n", cfg.Proxy.Origin)
		return nil
	}

	fmt.Printf("Stagehand v%s\n", Version)

	ctx := cli.SetupSignalHandler()

	// Telemetry
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("tracing init failed: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	// Access log journal
	var recorder *accesslog.Recorder
	if cfg.AccessLog.Enabled {
		store, err := accesslog.OpenStore(&cfg.AccessLog)
		if err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("access log init failed: %w", err))
		}
		defer store.Close()

		recorder = accesslog.NewRecorder(store, &cfg.AccessLog)
		defer recorder.Close()

		pruner := accesslog.NewPruner(store, &cfg.AccessLog)
		if err := pruner.Start(ctx); err != nil {
			logger.Warn("failed to start access log pruning", "error", err)
		} else {
			defer pruner.Stop()
		}
	} else {
		recorder = accesslog.NewRecorder(nil, &cfg.AccessLog)
	}

	// Live reload
	var hub *livereload.Hub
	if cfg.LiveReload.Enabled {
		hub = livereload.NewHub()
		hub.OnClientCountChange(collector.SetReloadClients)

		watcher, err := watch.NewWatcher(cfg.Content.Root, cfg.LiveReload.Debounce)
		if err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("watcher init failed: %w", err))
		}
		go func() {
			if err := watcher.Watch(ctx, func(path string) {
				collector.RecordWatcherEvent()
				hub.Broadcast(path)
			}); err != nil {
				logger.Error("content watcher stopped", "error", err)
			}
		}()
	}

	// Content chain
	res := resolver.New(&cfg.Content)
	fwd := forwarder.New(&cfg.Proxy)
	content := handlers.NewContentHandler(&cfg.Content, res, fwd, collector, tracer, recorder)

	// Health checks
	checker := health.New(5 * time.Second)
	checker.RegisterCheck("content_root", func(ctx context.Context) error {
		info, err := os.Stat(cfg.Content.Root)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("content root %q is not a directory", cfg.Content.Root)
		}
		return nil
	})
	checker.RegisterCheck("upstream", upstreamCheck(cfg.Proxy.Origin))

	srv := server.NewServer(cfg, content, checker, collector, hub, server.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})

	fmt.Printf("Serving %s on http://%s (upstream %s)\n",
		cfg.Content.Root, cfg.Server.ListenAddress, cfg.Proxy.Origin)
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// upstreamCheck reports whether the origin answers HTTP at all. Any
// response counts; a 404 from the origin still means it is reachable.
func upstreamCheck(originURL string) health.CheckFunc {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, originURL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		return nil
	}
}
