package store

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/storewatch/internal/errors"
)

// Runner executes the external store tool and captures its standard output.
// One process is spawned per call; there is no retry and no internal timeout.
// Cancellation, if any, comes from the caller's context.
type Runner interface {
	Run(ctx context.Context, argv []string, workDir string) (string, error)
}

// ExecRunner runs commands with os/exec in a given working directory.
type ExecRunner struct{}

// Run executes argv in workDir and returns the captured standard output.
// A non-zero exit status is translated into a tool-failure error carrying
// whatever diagnostics the process wrote to stderr.
func (ExecRunner) Run(ctx context.Context, argv []string, workDir string) (string, error) {
	if len(argv) == 0 {
		return "", errors.New(errors.CategoryValidation, errors.SeverityError, "empty command line")
	}

	slog.Debug("Running store command", "command", strings.Join(argv, " "), "dir", workDir)

	// #nosec G204 -- argv is built by CommandBuilder from validated configuration
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.ToolFailure(err, "store command failed").
			WithContext("command", argv[0]).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
