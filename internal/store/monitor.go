package store

import "time"

// Default values applied by config loading when fields are left empty.
const (
	DefaultVersionRegex          = ".+"
	DefaultMinimumBlessing       = "Development"
	DefaultParcelBuilderFilename = "parcelsToBuild"
)

// Monitor is the durable configuration for one monitored Store repository.
// A new Monitor replaces the old one on edit; runtime snapshots are never
// owned by it.
type Monitor struct {
	// Script is the name of a registered store script, resolved by lookup
	// at use time. A script rename without rewiring is a deliberate
	// failure case.
	Script string `yaml:"script" json:"script"`

	// Repository is the name of the Store repository to monitor.
	Repository string `yaml:"repository" json:"repository"`

	// Pundles are the root packages/bundles to monitor, in declared order.
	Pundles []PundleSpec `yaml:"pundles,omitempty" json:"pundles,omitempty"`

	// VersionRegex matches the pundle versions to include.
	VersionRegex string `yaml:"version_regex,omitempty" json:"version_regex,omitempty"`

	// MinimumBlessing includes only pundle versions with at least this
	// blessing level.
	MinimumBlessing string `yaml:"minimum_blessing,omitempty" json:"minimum_blessing,omitempty"`

	// GenerateParcelBuilderFile requests a pundle version list file usable
	// as ParcelBuilder input, written during checkout.
	GenerateParcelBuilderFile bool `yaml:"generate_parcel_builder_file,omitempty" json:"generate_parcel_builder_file,omitempty"`

	// ParcelBuilderFilename is the name of the version list file.
	ParcelBuilderFilename string `yaml:"parcel_builder_filename,omitempty" json:"parcel_builder_filename,omitempty"`

	// PollInterval is how often the daemon polls this repository.
	PollInterval time.Duration `yaml:"poll_interval,omitempty" json:"poll_interval,omitempty"`
}
