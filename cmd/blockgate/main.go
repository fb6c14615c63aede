package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/blockgate/blockgate/internal/api"
	"github.com/blockgate/blockgate/internal/bridge"
	"github.com/blockgate/blockgate/internal/config"
	"github.com/blockgate/blockgate/internal/dispatch"
	"github.com/blockgate/blockgate/internal/events"
	"github.com/blockgate/blockgate/internal/ledger"
	"github.com/blockgate/blockgate/internal/lock"
	"github.com/blockgate/blockgate/internal/log"
	"github.com/blockgate/blockgate/internal/tui/watch"
	"github.com/blockgate/blockgate/internal/world"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "start":
		return runStart(args)
	case "watch":
		return runWatch(args)
	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "blockgate.yaml", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("blockgate starting", "version", version, "config", *configPath, "checksum", cfg.Checksum)

	pidLock, err := lock.Acquire(cfg.PIDLockPath())
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "error", err)
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", pidLock.Path())

	led := ledger.New(cfg.Ledger.HistorySize, cfg.Ledger.QueueSize)
	manager := world.New(led)
	hub := events.NewHub(256)
	sessions := dispatch.NewSessionRegistry()

	disp := dispatch.New(led, sessions, hub, cfg.Service.DispatchWait)
	bridgeServer := bridge.New(cfg.Bridge.Listen, led, sessions, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 3)

	go func() {
		if err := disp.Start(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("dispatcher: %w", err)
		}
	}()

	go func() {
		if err := bridgeServer.Start(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("bridge: %w", err)
		}
	}()

	if cfg.API.Enabled {
		apiConfig := api.Config{
			Listen:         cfg.API.Listen,
			APIKey:         cfg.API.Auth.APIKey,
			ConfigChecksum: cfg.Checksum,
		}
		apiServer := api.New(apiConfig, manager, led, sessions, hub, log.WithComponent("api"))
		go func() {
			if err := apiServer.Start(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("api: %w", err)
			}
		}()
		logger.Info("API server enabled", "listen", cfg.API.Listen)
	}

	logger.Info("blockgate running (press Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("blockgate stopped")
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	apiURL := fs.String("api-url", "http://localhost:8000", "Gateway API URL")
	apiKey := fs.String("api-key", os.Getenv("BLOCKGATE_API_KEY"), "API Bearer Token")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if *apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: API key required. Use --api-key or BLOCKGATE_API_KEY env var.")
		return 1
	}

	m := watch.New(*apiURL, *apiKey)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	if *jsonOut {
		info := versionInfo{Version: version, Commit: gitCommit, BuildTime: buildDate}
		b, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal version info: %v\n", err)
			return 1
		}
		fmt.Println(string(b))
		return 0
	}

	fmt.Printf("blockgate %s (commit %s, built %s)\n", version, gitCommit, buildDate)
	return 0
}

func printUsage() {
	fmt.Println("blockgate - Minecraft world gateway")
	fmt.Println()
	fmt.Println("Usage: blockgate <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  start      Start the gateway (bridge, dispatcher, API)")
	fmt.Println("  watch      Live monitoring TUI for a running gateway")
	fmt.Println("  version    Print version information")
	fmt.Println("  help       Show this help")
	fmt.Println()
	fmt.Println("Flags for start:")
	fmt.Println("  --config PATH   Configuration file (default: blockgate.yaml)")
	fmt.Println()
	fmt.Println("Flags for watch:")
	fmt.Println("  --api-url URL   Gateway API URL (default: http://localhost:8000)")
	fmt.Println("  --api-key KEY   API Bearer Token (or BLOCKGATE_API_KEY env var)")
	fmt.Println()
	fmt.Println("Executors connect over WebSocket at ws://<bridge-listen>/ws.")
}
