package flagengine

import (
	"fmt"

	"github.com/grailbio/flu-curate/boundary"
	"github.com/grailbio/flu-curate/events"
	"github.com/grailbio/flu-curate/region"
	"github.com/grailbio/flu-curate/remap"
)

// Deletions emits the deletion flags of spec §4.4: runs of E_D = D \ A,
// each split by the boundary region(s) it straddles, whitelist-filtered for
// NCR/CDS kinds, with terminal-truncation suppression.
func Deletions(cols remap.Columns, b boundary.Boundaries, wl boundary.Whitelist, rc region.Classifier) []Record {
	ed := events.SortedMinusSet(cols.D, cols.A)
	queryLen := cols.QueryLength()

	var out []Record
	for _, run := range events.Group(ed) {
		profileDel := make([]int, len(run))
		for idx, c := range run {
			profileDel[idx] = cols.ColToProf(c)
		}
		q0 := cols.ColToQry(run.First())
		if q0 == 0 || q0 == queryLen {
			continue // terminal-truncation suppression
		}

		regions := rc.Overlapping(profileDel[0], profileDel[len(profileDel)-1])
		for _, rname := range regions {
			ivl := b.Region(rname)
			var sub []int
			for _, p := range profileDel {
				if ivl.Contains(p) {
					sub = append(sub, p)
				}
			}
			if len(sub) == 0 {
				continue
			}

			kind, ok := deletionKind(rname, sub, len(run), wl)
			if !ok {
				continue
			}
			out = append(out, Record{
				Kind:       kind,
				ProfilePos: posString(sub),
				QueryPos:   fmt.Sprintf("%d..%d", q0, q0+1),
				Variant:    "del",
				Length:     len(sub),
			})
		}
	}
	return out
}

// deletionKind maps a region and its region-local run of deleted profile
// positions to a flag kind per spec §4.4's deletion table, applying the
// §4.6 whitelist where it applies. runLen is the length of the *whole*
// deletion run, before splitting by straddled region: Autocuration.py:587
// tests len(pos) against the full run for the CDS frame check, not the
// length of any one region's slice of a straddling run. The second return
// is false when the whitelist accepts the variant (no flag should be
// emitted).
func deletionKind(rname string, sub []int, runLen int, wl boundary.Whitelist) (string, bool) {
	start, end := sub[0], sub[len(sub)-1]
	switch rname {
	case boundary.CTS5:
		return Del5CTS, true
	case boundary.CTS3:
		return Del3CTS, true
	case boundary.NCR5:
		if wl.Accept(Del5NCR, start, end) {
			return "", false
		}
		return Del5NCR, true
	case boundary.NCR3:
		if wl.Accept(Del3NCR, start, end) {
			return "", false
		}
		return Del3NCR, true
	case boundary.CDS:
		kind := DelCDS
		if runLen%3 == 0 {
			kind = DelCDS3X
		}
		if wl.Accept(kind, start, end) {
			return "", false
		}
		return kind, true
	default:
		return "", false
	}
}
