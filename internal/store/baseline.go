package store

import "math"

// BuildRecord is one immutable entry in the build history. A build carries
// zero or more revision states, one per distinct repository it polled. The
// recorded states are exhaustive for that build: a build that polled a
// repository always recorded a state for it. Baseline resolution depends on
// this invariant.
type BuildRecord struct {
	// Number is the build number; history is ordered newest-first by it.
	Number int64
	// States are the (repository, snapshot) pairs the build recorded, in
	// recording order.
	States []RevisionState
}

// FindBaseline locates the most recent snapshot for the given repository in
// the build history, which must be ordered newest-first.
//
// A build with no recorded states is skipped: it may simply predate any SCM
// polling. A build that recorded states for other repositories but none for
// this one stops the walk: the repository was not yet monitored at that
// point, and pairing against anything older would risk a stale baseline.
// This stop-on-mismatch policy is deliberate and preserved from the original
// behavior even for histories where several repositories were added at once.
//
// Malformed histories (build numbers that fail to decrease) terminate the
// walk as not-found rather than looping.
func FindBaseline(repository string, history []BuildRecord) (*RevisionState, bool) {
	prev := int64(math.MaxInt64)
	for i := range history {
		rec := &history[i]
		if rec.Number >= prev {
			return nil, false
		}
		prev = rec.Number

		if len(rec.States) == 0 {
			continue
		}
		for j := range rec.States {
			if rec.States[j].RepositoryName == repository {
				return &rec.States[j], true
			}
		}
		return nil, false
	}
	return nil, false
}
