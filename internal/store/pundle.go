// Package store implements change detection for VisualWorks Store
// repositories: building the external StoreCI command lines, running them,
// parsing their output into repository snapshots, and deciding whether a
// snapshot differs from a baseline in a build-triggering way.
package store

// PundleType is the kind of a Store pundle. Its value doubles as the
// command-line flag name used to reference pundles of that kind.
type PundleType string

const (
	PundleTypePackage PundleType = "package"
	PundleTypeBundle  PundleType = "bundle"
)

// Flag returns the command-line flag used to pass a pundle of this type.
func (t PundleType) Flag() string {
	return "-" + string(t)
}

// Valid reports whether t is a known pundle type.
func (t PundleType) Valid() bool {
	return t == PundleTypePackage || t == PundleTypeBundle
}

// PundleSpec names one root pundle to monitor. Immutable once constructed;
// a Monitor owns an ordered sequence of them and the order determines the
// order of the generated command-line flags.
type PundleSpec struct {
	Type PundleType `yaml:"type" json:"type"`
	Name string     `yaml:"name" json:"name"`
}

// blessingLevels lists the standard Store blessing levels, lowest first.
var blessingLevels = []string{
	"Broken",
	"Work In Progress",
	"Development",
	"To Review",
	"Patch",
	"Integration-Ready",
	"Integrated",
	"Ready to Merge",
	"Merged",
	"Tested",
	"Internal Release",
	"Released",
}

// BlessingLevels returns the standard Store blessing levels in ascending
// maturity order.
func BlessingLevels() []string {
	out := make([]string, len(blessingLevels))
	copy(out, blessingLevels)
	return out
}

// ValidBlessingLevel reports whether level is one of the standard levels.
func ValidBlessingLevel(level string) bool {
	for _, l := range blessingLevels {
		if l == level {
			return true
		}
	}
	return false
}
