package flagengine

import (
	"fmt"
	"strings"

	"github.com/grailbio/flu-curate/boundary"
	"github.com/grailbio/flu-curate/events"
	"github.com/grailbio/flu-curate/region"
	"github.com/grailbio/flu-curate/remap"
)

// Insertions emits the insertion flags of spec §4.4: runs over I, classified
// as 5'/3' terminal extensions when they sit entirely outside [1, END], or
// by the single boundary region flanking the run otherwise. Insertion flags
// are never whitelist-filtered.
func Insertions(cols remap.Columns, query string, rc region.Classifier) []Record {
	var out []Record
	for _, run := range events.Group(cols.I) {
		insBases := strings.ToUpper(extract(query, run))
		p0 := cols.ProfileInsertionPos(run.First())
		q0 := cols.QueryInsertionPos(run.First())
		q1 := cols.QueryInsertionPos(run.Last())

		kind, profilePos, ok := insertionKind(p0, len(run), rc)
		if !ok {
			continue
		}

		queryPos := fmt.Sprintf("%d", q0)
		if q0 != q1 {
			queryPos = fmt.Sprintf("%d..%d", q0, q1)
		}
		out = append(out, Record{
			Kind:       kind,
			ProfilePos: profilePos,
			QueryPos:   queryPos,
			Variant:    insBases,
			Length:     len(run),
		})
	}
	return out
}

// insertionKind classifies an insertion run flanked by canonical profile
// position p0 (constant across the run, per spec §4.4) and of length n.
func insertionKind(p0, n int, rc region.Classifier) (kind, profilePos string, ok bool) {
	if p0 == 0 {
		return Ins5Ext, "0..1", true
	}
	if p0 == rc.ProfileEnd() {
		return Ins3Ext, "END..", true
	}

	profilePos = fmt.Sprintf("%d..%d", p0, p0+1)
	switch rc.Single(p0) {
	case boundary.CTS5:
		return Ins5CTS, profilePos, true
	case boundary.CTS3:
		return Ins3CTS, profilePos, true
	case boundary.NCR5:
		return Ins5NCR, profilePos, true
	case boundary.NCR3:
		return Ins3NCR, profilePos, true
	case boundary.CDS:
		if n%3 == 0 {
			return InsCDS3X, profilePos, true
		}
		return InsCDS, profilePos, true
	default:
		return "", "", false
	}
}

// extract returns the characters of s at the columns named by run.
func extract(s string, run events.Run) string {
	b := make([]byte, len(run))
	for i, c := range run {
		b[i] = s[c]
	}
	return string(b)
}
