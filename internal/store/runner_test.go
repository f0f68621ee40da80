package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/storewatch/internal/errors"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	out, err := ExecRunner{}.Run(context.Background(),
		[]string{"sh", "-c", `printf 'Package "A" "1" "Development"\n'`}, t.TempDir())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "Package \"A\" \"1\" \"Development\"\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestExecRunnerRunsInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	out, err := ExecRunner{}.Run(context.Background(), []string{"pwd"}, dir)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	got := strings.TrimSpace(out)
	// Resolve symlinks (macOS tempdirs live under /private).
	want, _ := filepath.EvalSymlinks(dir)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != want {
		t.Errorf("expected working directory %q, got %q", want, got)
	}
}

func TestExecRunnerTranslatesNonZeroExit(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(),
		[]string{"sh", "-c", "echo broken image >&2; exit 3"}, t.TempDir())
	if err == nil {
		t.Fatal("expected failure for non-zero exit status")
	}
	if !errors.IsCategory(err, errors.CategoryTool) {
		t.Errorf("expected tool failure, got %v", err)
	}
	se, ok := err.(*errors.StoreError)
	if !ok {
		t.Fatalf("expected StoreError, got %T", err)
	}
	if se.Context["stderr"] != "broken image" {
		t.Errorf("expected stderr diagnostics preserved, got %v", se.Context)
	}
}

func TestExecRunnerEmptyCommand(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), nil, t.TempDir())
	if err == nil {
		t.Fatal("expected error for empty command line")
	}
	if !errors.IsCategory(err, errors.CategoryValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestExecRunnerMissingExecutable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-script")
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatal("precondition failed")
	}
	_, err := ExecRunner{}.Run(context.Background(), []string{missing}, t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
	if !errors.IsCategory(err, errors.CategoryTool) {
		t.Errorf("expected tool failure, got %v", err)
	}
}
