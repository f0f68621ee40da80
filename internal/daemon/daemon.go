// Package daemon runs the continuous polling loop: one scheduled job per
// monitored Store repository, each synchronously polling and, when the
// decision calls for it, checking out and recording a build.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/storewatch/internal/config"
	"git.home.luguber.info/inful/storewatch/internal/events"
	"git.home.luguber.info/inful/storewatch/internal/history"
	"git.home.luguber.info/inful/storewatch/internal/metrics"
	"git.home.luguber.info/inful/storewatch/internal/scripts"
	"git.home.luguber.info/inful/storewatch/internal/store"
)

// historyDepth bounds how far back baseline resolution looks. The walk stops
// at the first build with any recorded states anyway, so a modest window is
// plenty.
const historyDepth = 100

// Daemon owns the scheduler, the script registry, the build history, and the
// SCM orchestrator.
type Daemon struct {
	mu         sync.RWMutex
	cfg        *config.Config
	configPath string

	registry  *scripts.Registry
	history   *history.Store
	scm       *store.SCM
	scheduler gocron.Scheduler
	jobs      []gocron.Job

	promReg    *prom.Registry
	recorder   metrics.Recorder
	publisher  events.Publisher
	watcher    *ConfigWatcher
	metricsSrv *http.Server

	// buildMu serializes builds so history append order matches build
	// numbering even when several monitors trigger at once.
	buildMu sync.Mutex
}

// New creates a daemon from configuration. configPath enables config file
// watching; pass "" to disable it.
func New(cfg *config.Config, configPath string) (*Daemon, error) {
	registry, err := cfg.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("load script registry: %w", err)
	}

	if err := os.MkdirAll(cfg.Daemon.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	hist, err := history.NewStore(filepath.Join(cfg.Daemon.DataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("open build history: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		_ = hist.Close()
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	promReg := prom.NewRegistry()
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Daemon.MetricsAddr != "" {
		recorder = metrics.NewPrometheusRecorder(promReg)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Daemon.Events.Enabled {
		p, err := events.NewNATSPublisher(cfg.Daemon.Events)
		if err != nil {
			_ = hist.Close()
			return nil, fmt.Errorf("create event publisher: %w", err)
		}
		publisher = p
	}

	return &Daemon{
		cfg:        cfg,
		configPath: configPath,
		registry:   registry,
		history:    hist,
		scm:        store.NewSCM(registry, store.ExecRunner{}),
		scheduler:  scheduler,
		promReg:    promReg,
		recorder:   recorder,
		publisher:  publisher,
	}, nil
}

// Start schedules the polling jobs and background services.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	if err := d.scheduleMonitorsLocked(ctx); err != nil {
		d.mu.Unlock()
		return err
	}
	cfg := d.cfg
	d.mu.Unlock()

	slog.Info("Starting scheduler", "monitors", len(cfg.Monitors))
	d.scheduler.Start()

	if cfg.Daemon.MetricsAddr != "" {
		d.startMetricsServer(cfg.Daemon.MetricsAddr)
	}

	if d.configPath != "" {
		watcher, err := NewConfigWatcher(d.configPath, d)
		if err != nil {
			return fmt.Errorf("create config watcher: %w", err)
		}
		d.watcher = watcher
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start config watcher: %w", err)
		}
	}

	return nil
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop(ctx context.Context) error {
	slog.Info("Stopping daemon")

	if d.watcher != nil {
		_ = d.watcher.Stop(ctx)
	}
	if err := d.scheduler.Shutdown(); err != nil {
		slog.Error("Error shutting down scheduler", "error", err)
	}
	d.stopMetricsServer(ctx)
	if err := d.publisher.Close(); err != nil {
		slog.Error("Error closing event publisher", "error", err)
	}
	return d.history.Close()
}

// GetConfig returns the currently active configuration.
func (d *Daemon) GetConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// ReloadConfig applies a new configuration: swaps the monitor set, replaces
// the script registry wholesale, and reschedules the polling jobs.
func (d *Daemon) ReloadConfig(ctx context.Context, newCfg *config.Config) error {
	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(newCfg.Scripts) > 0 {
		if err := d.registry.Replace(newCfg.Scripts); err != nil {
			return fmt.Errorf("replace script registry: %w", err)
		}
	}

	for _, job := range d.jobs {
		if err := d.scheduler.RemoveJob(job.ID()); err != nil {
			slog.Warn("Failed to remove scheduled job", "job_id", job.ID(), "error", err)
		}
	}
	d.jobs = nil
	d.cfg = newCfg

	if err := d.scheduleMonitorsLocked(ctx); err != nil {
		return err
	}

	slog.Info("Configuration reloaded", "monitors", len(newCfg.Monitors))
	return nil
}

func (d *Daemon) scheduleMonitorsLocked(ctx context.Context) error {
	for _, m := range d.cfg.Monitors {
		monitor := m
		job, err := d.scheduler.NewJob(
			gocron.DurationJob(monitor.PollInterval),
			gocron.NewTask(func() { d.pollMonitor(ctx, monitor) }),
			gocron.WithName(fmt.Sprintf("poll-%s", monitor.Repository)),
		)
		if err != nil {
			return fmt.Errorf("failed to create polling job for %s: %w", monitor.Repository, err)
		}
		d.jobs = append(d.jobs, job)
	}
	return nil
}

func newBuildID() string {
	return uuid.NewString()
}
