package curation

import "github.com/grailbio/flu-curate/flagengine"

// FlagReport is the tagged variant replacing the source pipeline's
// sentinel-string convention ("Unknown" mixed in among real flag lists):
// a mutation outcome is exactly one of Pass, Unknown, or a concrete flag
// list, and callers must ask which before reading Records().
type FlagReport struct {
	state reportState
	flags []flagengine.Record
}

type reportState int

const (
	statePass reportState = iota
	stateUnknown
	stateFlags
)

// Pass is the outcome when curation ran to completion and found no flags.
func Pass() FlagReport { return FlagReport{state: statePass} }

// Unknown is the outcome when classification could not identify the query
// (curation never ran).
func Unknown() FlagReport { return FlagReport{state: stateUnknown} }

// Flags wraps a non-empty set of emitted curation flags. Passing an empty
// slice returns Pass(), so Flags() callers never see an empty Flags state.
func Flags(records []flagengine.Record) FlagReport {
	if len(records) == 0 {
		return Pass()
	}
	return FlagReport{state: stateFlags, flags: records}
}

// IsPass reports whether curation found no flags.
func (r FlagReport) IsPass() bool { return r.state == statePass }

// IsUnknown reports whether classification failed to identify the query.
func (r FlagReport) IsUnknown() bool { return r.state == stateUnknown }

// Records returns the emitted flags, or nil if the state is not Flags.
func (r FlagReport) Records() []flagengine.Record {
	if r.state != stateFlags {
		return nil
	}
	return r.flags
}
