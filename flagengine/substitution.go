package flagengine

import (
	"strconv"
	"strings"

	"github.com/grailbio/flu-curate/boundary"
	"github.com/grailbio/flu-curate/events"
	"github.com/grailbio/flu-curate/remap"
)

// Substitutions emits the CTS-only mismatch flags of spec §4.4 step by
// step: adjust each of CTS5/CTS3's canonical bounds into alignment-column
// space (via the same col/profile mapping remap already provides), scan
// for strict-consensus mismatches, group into runs, drop N-only runs, and
// report the rest as 5'CTS-mut / 3'CTS-mut.
func Substitutions(cols remap.Columns, b boundary.Boundaries, profileRows []string, query string) []Record {
	var out []Record
	for _, rname := range [...]string{boundary.CTS5, boundary.CTS3} {
		ivl := b.Region(rname)
		if ivl.Start > ivl.End {
			continue // empty region, nothing to scan
		}
		colStart := cols.ProfToCol(ivl.Start)
		colEnd := cols.ProfToCol(ivl.End)

		var mismatches []int
		for c := colStart; c <= colEnd; c++ {
			if cols.InInsertion(c) || cols.InDeletion(c) {
				continue
			}
			if consensusMismatch(profileRows, query, c) {
				mismatches = append(mismatches, c)
			}
		}

		kind := Mut5CTS
		if rname == boundary.CTS3 {
			kind = Mut3CTS
		}
		for _, run := range events.Group(mismatches) {
			variant := strings.ToUpper(extract(query, run))
			if isAllN(variant) {
				continue
			}
			profilePos := make([]int, len(run))
			for i, c := range run {
				profilePos[i] = cols.ColToProf(c)
			}
			out = append(out, Record{
				Kind:       kind,
				ProfilePos: posString(profilePos),
				QueryPos:   queryPosString(cols, run),
				Variant:    variant,
				Length:     len(run),
			})
		}
	}
	return out
}

// consensusMismatch reports whether every profile row's base at column c
// differs from the query's base there (spec §4.4 step 2: strict consensus
// mismatch -- a single profile row agreeing with the query is enough to
// suppress the flag).
func consensusMismatch(profileRows []string, query string, c int) bool {
	qc := query[c]
	for _, row := range profileRows {
		if row[c] == qc {
			return false
		}
	}
	return len(profileRows) > 0
}

func isAllN(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != 'N' {
			return false
		}
	}
	return true
}

func queryPosString(cols remap.Columns, run events.Run) string {
	q0 := cols.ColToQry(run.First())
	q1 := cols.ColToQry(run.Last())
	if q0 == q1 {
		return strconv.Itoa(q0)
	}
	return strconv.Itoa(q0) + ".." + strconv.Itoa(q1)
}
