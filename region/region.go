// Package region classifies a canonical-profile-coordinate span into the
// five boundary regions (C7), or the 5'/3' terminal-extension cases for
// insertions that fall entirely outside [1, END] (spec §4.4). It is built
// on the same sorted-endpoint binary-search idiom as interval.SearchPosTypes
// (adapted from genome-BED interval lookup to single-strain boundary
// lookup: five fixed regions instead of an arbitrary chromosome-keyed
// interval union).
package region

import (
	"github.com/grailbio/flu-curate/boundary"
	"github.com/grailbio/flu-curate/interval"
)

// Classifier answers region-overlap queries for one strain's boundaries.
type Classifier struct {
	names  []string
	starts []interval.PosType // names[i] starts at starts[i], 1-based
	ends   []interval.PosType // names[i] ends at ends[i], inclusive
	end    int                // canonical profile length
}

// New builds a Classifier from a strain's boundaries.
func New(b boundary.Boundaries) Classifier {
	ordered := b.Ordered()
	c := Classifier{end: b.End}
	for _, r := range ordered {
		c.names = append(c.names, r.Name)
		c.starts = append(c.starts, interval.PosType(r.Ivl.Start))
		c.ends = append(c.ends, interval.PosType(r.Ivl.End))
	}
	return c
}

// ProfileEnd returns the canonical profile length (END).
func (c Classifier) ProfileEnd() int { return c.end }

// Overlapping returns the names of every region whose [Start,End] intersects
// [start, end] (canonical profile coordinates), in tiling order. A run may
// straddle more than one region (spec §4.4 step 2), so every match is
// returned, not just the first.
func (c Classifier) Overlapping(start, end int) []string {
	// Regions tile [1, c.end] in order, so the first region whose end is >=
	// start is a binary-search lower bound on where overlap can begin; scan
	// forward from there until a region's start exceeds end.
	idx := int(interval.SearchPosTypes(c.ends, interval.PosType(start)))
	var out []string
	for i := idx; i < len(c.names) && int(c.starts[i]) <= end; i++ {
		out = append(out, c.names[i])
	}
	return out
}

// Single returns the one region containing pos, or "" if pos falls outside
// [1, END] entirely (the terminal-extension case, handled by the caller
// before consulting a Classifier).
func (c Classifier) Single(pos int) string {
	matches := c.Overlapping(pos, pos)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}
