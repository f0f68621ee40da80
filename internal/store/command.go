package store

import "time"

// timestampLayout renders timestamps the way the StoreCI tool expects them:
// MM/dd/yyyy HH:mm:ss.SSS. Timestamps are always rendered in UTC so that
// -since/-now comparisons against the Store server's clock are unambiguous
// regardless of the host's local zone.
const timestampLayout = "01/02/2006 15:04:05.000"

// PollingCommand builds the argument vector used to poll a repository for
// its current pundle versions. Pure function: no I/O, deterministic for a
// given monitor. Arguments stay a list; nothing is shell-quoted.
func PollingCommand(m Monitor, scriptPath string) []string {
	args := []string{scriptPath, "-repository", m.Repository}
	args = appendPundleArgs(args, m.Pundles)
	args = append(args,
		"-versionRegex", m.VersionRegex,
		"-blessedAtLeast", m.MinimumBlessing,
	)
	return args
}

// CheckoutCommand builds the argument vector for a full checkout, including
// the changelog time window and output path. The flags shared with the
// polling form appear first and in the same order.
func CheckoutCommand(m Monitor, scriptPath string, since, now time.Time, changelogPath string) []string {
	args := PollingCommand(m, scriptPath)
	args = append(args,
		"-since", FormatTimestamp(since),
		"-now", FormatTimestamp(now),
		"-changelog", changelogPath,
	)
	if m.GenerateParcelBuilderFile {
		args = append(args, "-parcelBuilderFile", m.ParcelBuilderFilename)
	}
	return args
}

// FormatTimestamp renders t in the tool's timestamp format, in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func appendPundleArgs(args []string, pundles []PundleSpec) []string {
	for _, spec := range pundles {
		args = append(args, spec.Type.Flag(), spec.Name)
	}
	return args
}
