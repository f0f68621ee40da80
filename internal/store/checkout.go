package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/storewatch/internal/errors"
	"git.home.luguber.info/inful/storewatch/internal/logfields"
)

// emptyChangeLog is written when the tool produced no changelog artifact.
const emptyChangeLog = "<log/>\n"

// CheckoutOptions control a single checkout operation.
type CheckoutOptions struct {
	// WorkDir is the directory the tool runs in; the temporary changelog
	// is created there.
	WorkDir string
	// ChangelogPath is where the changelog artifact ends up. Its contents
	// are opaque bytes, relocated rather than parsed.
	ChangelogPath string
	// Since is the start of the changelog window. Zero means midnight UTC
	// of the current day (first build).
	Since time.Time
	// Now is the end of the window. Zero means the current time.
	Now time.Time
}

// Checkout retrieves the repository's changes since the last build and
// returns the freshly parsed snapshot for the caller to attach to the build
// record. Unlike polling, checkout is mandatory for a build to proceed:
// tool failures and unparseable output abort with an error instead of
// degrading to "no changes".
func (s *SCM) Checkout(ctx context.Context, m Monitor, opts CheckoutOptions) (*RevisionState, error) {
	log := s.logger.With(logfields.Repository(m.Repository))

	scriptPath, ok := s.scripts.Lookup(m.Script)
	if !ok {
		return nil, errors.ConfigurationError("no store script registered under name " + m.Script).
			WithContext("script", m.Script)
	}

	since := opts.Since
	if since.IsZero() {
		since = midnightUTC(s.now())
	}
	now := opts.Now
	if now.IsZero() {
		now = s.now()
	}

	tmp, err := os.CreateTemp(opts.WorkDir, "store*.xml")
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryDaemon, errors.SeverityError, "create temporary changelog")
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryDaemon, errors.SeverityError, "close temporary changelog")
	}
	// The tool only writes the file when there are changes to log; remove
	// the placeholder so its absence is detectable.
	if err := os.Remove(tmpPath); err != nil {
		return nil, errors.Wrap(err, errors.CategoryDaemon, errors.SeverityError, "reset temporary changelog")
	}

	argv := CheckoutCommand(m, scriptPath, since, now, tmpPath)
	output, err := s.runner.Run(ctx, argv, opts.WorkDir)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryTool, errors.SeverityFatal, "checkout command failed")
	}

	if opts.ChangelogPath != "" {
		if err := relocateChangeLog(tmpPath, opts.ChangelogPath); err != nil {
			return nil, err
		}
		log.Debug("Changelog written", logfields.Path(opts.ChangelogPath))
	}

	current, err := ParseRevisionState(m.Repository, output)
	if err != nil {
		return nil, err
	}
	return current, nil
}

// relocateChangeLog moves the tool's changelog artifact to dest, or writes an
// empty changelog record when the tool produced none.
func relocateChangeLog(tmpPath, dest string) error {
	if _, err := os.Stat(tmpPath); os.IsNotExist(err) {
		if err := os.WriteFile(dest, []byte(emptyChangeLog), 0o600); err != nil {
			return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityError, "write empty changelog")
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityError, "create changelog directory")
	}
	if err := copyFile(tmpPath, dest); err != nil {
		return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityError, "relocate changelog")
	}
	if err := os.Remove(tmpPath); err != nil {
		return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityError, "remove temporary changelog")
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src) // #nosec G304 -- paths come from controlled checkout options
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// midnightUTC returns the start of t's day in UTC.
func midnightUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
