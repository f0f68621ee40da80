package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/storewatch/internal/history"
	"git.home.luguber.info/inful/storewatch/internal/logfields"
	"git.home.luguber.info/inful/storewatch/internal/store"
)

// pollMonitor is the scheduled entry point for one monitor. It never returns
// an error: polling failures degrade to "no changes this cycle" inside the
// SCM, and build failures are recorded in the history.
func (d *Daemon) pollMonitor(ctx context.Context, m store.Monitor) {
	log := slog.With(logfields.Repository(m.Repository))

	records, err := d.history.RecentRecords(ctx, historyDepth)
	if err != nil {
		log.Error("Failed to load build history, skipping poll cycle", logfields.Error(err))
		return
	}

	start := time.Now()
	result := d.scm.Poll(ctx, m, records, nil, d.workDir())
	elapsed := time.Since(start)

	d.recorder.ObservePollDuration(m.Repository, elapsed)
	d.recorder.IncPollDecision(m.Repository, string(result.Decision))
	if err := d.publisher.PublishPollDecision(pollEvent(m.Repository, result)); err != nil {
		log.Warn("Failed to publish poll event", logfields.Error(err))
	}

	log.Info("Poll completed",
		logfields.Decision(string(result.Decision)),
		logfields.DurationMS(float64(elapsed.Milliseconds())))

	if result.Decision.Triggering() {
		d.runBuild(ctx, m)
	}
}

// runBuild performs a checkout and appends the resulting build record.
// Builds are serialized so history append order matches build numbering.
func (d *Daemon) runBuild(ctx context.Context, m store.Monitor) {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	buildID := newBuildID()
	log := slog.With(logfields.Repository(m.Repository), logfields.BuildID(buildID))

	workspace := filepath.Join(d.dataDir(), "builds", buildID)
	if err := os.MkdirAll(workspace, 0o750); err != nil {
		log.Error("Failed to create build workspace", logfields.Error(err))
		return
	}

	// The changelog window starts at the previous build; the SCM falls back
	// to midnight UTC when no build exists yet.
	var since time.Time
	if last, err := d.history.LastBuild(ctx); err == nil && last != nil {
		since = last.Timestamp
	}

	now := time.Now()
	state, err := d.scm.Checkout(ctx, m, store.CheckoutOptions{
		WorkDir:       workspace,
		ChangelogPath: filepath.Join(workspace, "changelog.xml"),
		Since:         since,
		Now:           now,
	})
	elapsed := time.Since(now)

	outcome := history.OutcomeSuccess
	var states []store.RevisionState
	if err != nil {
		outcome = history.OutcomeFailed
		log.Error("Checkout failed, aborting build", logfields.Error(err))
	} else {
		states = []store.RevisionState{*state}
	}

	d.recorder.ObserveCheckoutDuration(m.Repository, elapsed, err == nil)
	d.recorder.IncCheckoutResult(err == nil)

	number, appendErr := d.history.AppendBuild(ctx, buildID, now, outcome, states)
	if appendErr != nil {
		log.Error("Failed to record build", logfields.Error(appendErr))
		return
	}

	if err := d.publisher.PublishBuild(buildEvent(buildID, number, m.Repository, outcome)); err != nil {
		log.Warn("Failed to publish build event", logfields.Error(err))
	}

	log.Info("Build recorded",
		logfields.BuildNumber(number),
		slog.String("outcome", outcome),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
}

func (d *Daemon) dataDir() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg.Daemon.DataDir
}

// workDir is where polling commands run; polling needs no workspace of its
// own, only a working directory for the external tool.
func (d *Daemon) workDir() string {
	return d.dataDir()
}
