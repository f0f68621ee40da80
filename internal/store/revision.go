package store

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/storewatch/internal/errors"
)

// PundleVersion is one pundle's version/blessing metadata within a snapshot.
type PundleVersion struct {
	Type     PundleType `json:"type"`
	Name     string     `json:"name"`
	Version  string     `json:"version"`
	Blessing string     `json:"blessing"`
}

func (p PundleVersion) key() string {
	return string(p.Type) + "\x00" + p.Name
}

// RevisionState is an immutable point-in-time description of one repository's
// contents, parsed from the store tool's polling/checkout output. Two states
// are comparable for "has changed" only when they describe the same
// repository; resolving the right baseline is the caller's job.
type RevisionState struct {
	RepositoryName string `json:"repository"`
	// Pundles is sorted by (type, name) so structural equality is
	// insensitive to the tool's output order.
	Pundles []PundleVersion `json:"pundles"`
}

// Tool output lines look like:
//
//	Package "MyApp-Core" "42.7" "Integration-Ready"
//	Bundle "MyApp" "7.10.1" "Released"
var revisionLine = regexp.MustCompile(`^(Package|Bundle)\s+"([^"]*)"\s+"([^"]*)"\s+"([^"]*)"$`)

// ParseRevisionState parses the tool's text output into a snapshot for the
// named repository. Deterministic: the same (repository, output) pair always
// yields states that compare equal. Malformed output is a parse error,
// distinct from the tool itself reporting failure.
func ParseRevisionState(repositoryName, output string) (*RevisionState, error) {
	if repositoryName == "" {
		return nil, errors.New(errors.CategoryValidation, errors.SeverityError, "repository name is empty")
	}

	byKey := make(map[string]PundleVersion)
	for i, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := revisionLine.FindStringSubmatch(line)
		if m == nil {
			return nil, errors.ParseFailure(fmt.Sprintf("malformed store output at line %d", i+1)).
				WithContext("line", line)
		}
		pundleType := PundleTypePackage
		if m[1] == "Bundle" {
			pundleType = PundleTypeBundle
		}
		pv := PundleVersion{Type: pundleType, Name: m[2], Version: m[3], Blessing: m[4]}
		byKey[pv.key()] = pv
	}

	pundles := make([]PundleVersion, 0, len(byKey))
	for _, pv := range byKey {
		pundles = append(pundles, pv)
	}
	sort.Slice(pundles, func(i, j int) bool { return pundles[i].key() < pundles[j].key() })

	return &RevisionState{RepositoryName: repositoryName, Pundles: pundles}, nil
}

// Equal reports structural equality of two snapshots.
func (s *RevisionState) Equal(other *RevisionState) bool {
	if other == nil {
		return false
	}
	if s.RepositoryName != other.RepositoryName || len(s.Pundles) != len(other.Pundles) {
		return false
	}
	for i := range s.Pundles {
		if s.Pundles[i] != other.Pundles[i] {
			return false
		}
	}
	return true
}

// ChangedFrom reports whether s differs from the baseline in a
// build-triggering way. A nil baseline always counts as changed: there is
// nothing to compare against. Comparing states of different repositories is
// a programmer error; callers must resolve the correct baseline first.
func (s *RevisionState) ChangedFrom(baseline *RevisionState) (bool, error) {
	if baseline == nil {
		return true, nil
	}
	if baseline.RepositoryName != s.RepositoryName {
		return false, errors.RepositoryMismatch(
			fmt.Sprintf("cannot compare repository %q against baseline for %q",
				s.RepositoryName, baseline.RepositoryName))
	}
	return !s.Equal(baseline), nil
}

// Changes describes the pundle-level differences from the baseline, for
// logging. Empty when the states are equal or the baseline is nil.
func (s *RevisionState) Changes(baseline *RevisionState) []string {
	if baseline == nil {
		return nil
	}

	base := make(map[string]PundleVersion, len(baseline.Pundles))
	for _, pv := range baseline.Pundles {
		base[pv.key()] = pv
	}

	var changes []string
	seen := make(map[string]bool, len(s.Pundles))
	for _, pv := range s.Pundles {
		seen[pv.key()] = true
		old, ok := base[pv.key()]
		switch {
		case !ok:
			changes = append(changes, fmt.Sprintf("%s %q added (%s, %s)", pv.Type, pv.Name, pv.Version, pv.Blessing))
		case old != pv:
			changes = append(changes, fmt.Sprintf("%s %q changed (%s, %s) -> (%s, %s)",
				pv.Type, pv.Name, old.Version, old.Blessing, pv.Version, pv.Blessing))
		}
	}
	for _, pv := range baseline.Pundles {
		if !seen[pv.key()] {
			changes = append(changes, fmt.Sprintf("%s %q removed", pv.Type, pv.Name))
		}
	}
	return changes
}
