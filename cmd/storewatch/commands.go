package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/storewatch/internal/config"
	"git.home.luguber.info/inful/storewatch/internal/history"
	"git.home.luguber.info/inful/storewatch/internal/scripts"
	"git.home.luguber.info/inful/storewatch/internal/store"
)

func findMonitor(cfg *config.Config, repository string) (store.Monitor, error) {
	for _, m := range cfg.Monitors {
		if m.Repository == repository {
			return m, nil
		}
	}
	return store.Monitor{}, fmt.Errorf("repository %q not found in configuration", repository)
}

// runPoll performs a one-shot poll for one monitored repository and prints
// the decision. The build history is read-only here; nothing is recorded.
func runPoll(cfg *config.Config, repository, workDir, dataDir string) error {
	monitor, err := findMonitor(cfg, repository)
	if err != nil {
		return err
	}

	registry, err := cfg.LoadRegistry()
	if err != nil {
		return err
	}

	hist, err := history.NewStore(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()

	ctx := context.Background()
	records, err := hist.RecentRecords(ctx, 100)
	if err != nil {
		return err
	}

	scm := store.NewSCM(registry, store.ExecRunner{})
	result := scm.Poll(ctx, monitor, records, nil, workDir)
	fmt.Println(result.Decision)
	return nil
}

// runCheckout performs a one-shot checkout and records the build.
func runCheckout(cfg *config.Config, repository, workDir, changelog, dataDir string) error {
	monitor, err := findMonitor(cfg, repository)
	if err != nil {
		return err
	}

	registry, err := cfg.LoadRegistry()
	if err != nil {
		return err
	}

	hist, err := history.NewStore(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return err
	}
	defer func() { _ = hist.Close() }()

	ctx := context.Background()
	var since time.Time
	if last, err := hist.LastBuild(ctx); err == nil && last != nil {
		since = last.Timestamp
	}

	scm := store.NewSCM(registry, store.ExecRunner{})
	now := time.Now()
	state, err := scm.Checkout(ctx, monitor, store.CheckoutOptions{
		WorkDir:       workDir,
		ChangelogPath: changelog,
		Since:         since,
		Now:           now,
	})
	if err != nil {
		return err
	}

	number, err := hist.AppendBuild(ctx, fmt.Sprintf("cli-%d", now.Unix()), now, history.OutcomeSuccess, []store.RevisionState{*state})
	if err != nil {
		return err
	}

	fmt.Printf("build %d recorded, changelog written to %s\n", number, changelog)
	return nil
}

func runScriptsList(cfg *config.Config) error {
	registry, err := cfg.LoadRegistry()
	if err != nil {
		return err
	}
	for _, s := range registry.All() {
		fmt.Printf("%s\t%s\n", s.Name, s.Path)
	}
	return nil
}

// runScriptsSet updates (or adds) one script in the shared scripts file and
// saves the whole list back, keeping the single-writer replace discipline.
func runScriptsSet(cfg *config.Config, name, path string) error {
	if cfg.ScriptsFile == "" {
		return fmt.Errorf("no scripts_file configured; inline scripts are edited in the config file")
	}

	registry, err := scripts.Load(cfg.ScriptsFile)
	if err != nil {
		return err
	}

	all := registry.All()
	updated := false
	for i := range all {
		if all[i].Name == name {
			all[i].Path = path
			updated = true
			break
		}
	}
	if !updated {
		all = append(all, scripts.Script{Name: name, Path: path})
	}

	return registry.Replace(all)
}
