package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepository  = "repository"
	KeyScript      = "script"
	KeyBuildID     = "build_id"
	KeyBuildNumber = "build_number"
	KeyDecision    = "decision"
	KeyPundle      = "pundle"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(r string) slog.Attr   { return slog.String(KeyRepository, r) }
func Script(s string) slog.Attr       { return slog.String(KeyScript, s) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func BuildNumber(n int64) slog.Attr   { return slog.Int64(KeyBuildNumber, n) }
func Decision(d string) slog.Attr     { return slog.String(KeyDecision, d) }
func Pundle(p string) slog.Attr       { return slog.String(KeyPundle, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
