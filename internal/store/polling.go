package store

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/storewatch/internal/logfields"
)

// Decision is the outcome of one poll invocation.
type Decision string

const (
	// DecisionBuildNow requests an unconditional build: there was nothing
	// to compare against (no prior build, or a never-before-seen repository).
	DecisionBuildNow Decision = "build_now"
	// DecisionNoChanges means the repository is unchanged, or polling
	// degraded safely after a tool/configuration problem.
	DecisionNoChanges Decision = "no_changes"
	// DecisionSignificant means the current snapshot differs from the baseline.
	DecisionSignificant Decision = "significant_changes"
)

// Triggering reports whether the decision should schedule a build.
func (d Decision) Triggering() bool {
	return d == DecisionBuildNow || d == DecisionSignificant
}

// PollResult is the decision tuple returned by a poll: the resolved baseline,
// the freshly parsed current state, and the decision. The caller persists
// Current as the next baseline regardless of outcome.
type PollResult struct {
	Decision Decision
	Baseline *RevisionState
	Current  *RevisionState
}

// ScriptResolver resolves a configured script name to an executable path.
// Implemented by the scripts registry.
type ScriptResolver interface {
	Lookup(name string) (string, bool)
}

// SCM orchestrates polling and checkout for Store repositories. Each
// operation runs to completion synchronously on the calling goroutine; SCMs
// for independent monitors need no coordination.
type SCM struct {
	scripts ScriptResolver
	runner  Runner
	logger  *slog.Logger
	now     func() time.Time
}

// NewSCM creates an orchestrator using the given script registry and runner.
func NewSCM(scripts ScriptResolver, runner Runner) *SCM {
	return &SCM{
		scripts: scripts,
		runner:  runner,
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// WithLogger replaces the logger used for poll/checkout diagnostics.
func (s *SCM) WithLogger(logger *slog.Logger) *SCM {
	s.logger = logger
	return s
}

// WithClock replaces the time source. Used in tests.
func (s *SCM) WithClock(now func() time.Time) *SCM {
	s.now = now
	return s
}

// Poll decides whether the monitored repository has build-triggering changes.
//
// history is the build history, newest first; baseline is the snapshot handed
// in by the caller, which may belong to a different repository when several
// monitors share one build history. Polling never returns an error for tool
// or configuration problems: a broken tool must not spuriously trigger or
// block builds beyond "do nothing this cycle".
func (s *SCM) Poll(ctx context.Context, m Monitor, history []BuildRecord, baseline *RevisionState, workDir string) PollResult {
	log := s.logger.With(logfields.Repository(m.Repository))

	if len(history) == 0 {
		log.Info("No existing build, scheduling a new one")
		return PollResult{Decision: DecisionBuildNow}
	}

	// The handed-in baseline may be for a different repository. Resolve the
	// correct one from the build history before comparing.
	if baseline == nil || baseline.RepositoryName != m.Repository {
		resolved, ok := FindBaseline(m.Repository, history)
		if !ok {
			log.Info("New repository, scheduling a new build")
			return PollResult{Decision: DecisionBuildNow}
		}
		baseline = resolved
	}

	scriptPath, ok := s.scripts.Lookup(m.Script)
	if !ok {
		log.Error("No store script registered under configured name",
			logfields.Script(m.Script))
		return PollResult{Decision: DecisionNoChanges, Baseline: baseline}
	}

	output, err := s.runner.Run(ctx, PollingCommand(m, scriptPath), workDir)
	if err != nil {
		log.Warn("Polling command failed, assuming no changes this cycle",
			logfields.Error(err))
		return PollResult{Decision: DecisionNoChanges, Baseline: baseline}
	}

	current, err := ParseRevisionState(m.Repository, output)
	if err != nil {
		// A malformed snapshot cannot be trusted any more than a failed
		// tool run; degrade the same way.
		log.Warn("Polling output unparseable, assuming no changes this cycle",
			logfields.Error(err))
		return PollResult{Decision: DecisionNoChanges, Baseline: baseline}
	}

	changed, err := current.ChangedFrom(baseline)
	if err != nil {
		log.Error("Baseline comparison failed", logfields.Error(err))
		return PollResult{Decision: DecisionNoChanges, Baseline: baseline, Current: current}
	}

	decision := DecisionNoChanges
	if changed {
		decision = DecisionSignificant
		for _, change := range current.Changes(baseline) {
			log.Info("Detected change", "change", change)
		}
	}
	return PollResult{Decision: decision, Baseline: baseline, Current: current}
}
