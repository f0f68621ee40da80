package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/storewatch/internal/config"
	"git.home.luguber.info/inful/storewatch/internal/daemon"
	"git.home.luguber.info/inful/storewatch/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"storewatch.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Poll struct {
		Repository string `arg:"" help:"Monitored repository to poll"`
		WorkDir    string `short:"w" help:"Working directory for the store tool" default:"."`
		DataDir    string `short:"d" help:"Data directory holding the build history" default:"./storewatch-data"`
	} `cmd:"" help:"Poll one repository and print the build decision"`

	Checkout struct {
		Repository string `arg:"" help:"Monitored repository to check out"`
		WorkDir    string `short:"w" help:"Working directory for the store tool" default:"."`
		Changelog  string `short:"l" help:"Changelog destination path" default:"changelog.xml"`
		DataDir    string `short:"d" help:"Data directory holding the build history" default:"./storewatch-data"`
	} `cmd:"" help:"Check out one repository's changes and record the build"`

	Daemon struct {
	} `cmd:"" help:"Start the daemon mode for continuous repository polling"`

	Version struct {
	} `cmd:"" help:"Print version information"`

	Scripts struct {
		List struct {
		} `cmd:"" help:"List registered store scripts"`

		Set struct {
			Name string `arg:"" help:"Script name"`
			Path string `arg:"" help:"Script path"`
		} `cmd:"" help:"Register or update a store script"`
	} `cmd:"" help:"Administer the store script registry"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "poll <repository>":
		cfg := mustLoadConfig()
		if err := runPoll(cfg, CLI.Poll.Repository, CLI.Poll.WorkDir, CLI.Poll.DataDir); err != nil {
			slog.Error("Poll failed", "error", err)
			os.Exit(1)
		}
	case "checkout <repository>":
		cfg := mustLoadConfig()
		if err := runCheckout(cfg, CLI.Checkout.Repository, CLI.Checkout.WorkDir, CLI.Checkout.Changelog, CLI.Checkout.DataDir); err != nil {
			slog.Error("Checkout failed", "error", err)
			os.Exit(1)
		}
	case "daemon":
		cfg := mustLoadConfig()
		if err := runDaemon(cfg); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("storewatch %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	case "scripts list":
		cfg := mustLoadConfig()
		if err := runScriptsList(cfg); err != nil {
			slog.Error("Listing scripts failed", "error", err)
			os.Exit(1)
		}
	case "scripts set <name> <path>":
		cfg := mustLoadConfig()
		if err := runScriptsSet(cfg, CLI.Scripts.Set.Name, CLI.Scripts.Set.Path); err != nil {
			slog.Error("Registering script failed", "error", err)
			os.Exit(1)
		}
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

func runDaemon(cfg *config.Config) error {
	slog.Info("Starting daemon mode", "data_dir", cfg.Daemon.DataDir)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, CLI.Config)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	slog.Info("Daemon started, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping daemon...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	slog.Info("Daemon stopped successfully")
	return nil
}
