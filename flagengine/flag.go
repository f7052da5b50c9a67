// Package flagengine applies spec §4.4's region-specific, frame-sensitive,
// and whitelist-filtered rules to the column sets and runs derived upstream
// (remap, events, region) and emits typed curation flag records (C8).
package flagengine

import "fmt"

// Flag kind labels named in spec §4.4/§3: 16 values (six deletion, eight
// insertion, two substitution).
const (
	Del5CTS  = "5'CTS-del"
	Del3CTS  = "3'CTS-del"
	Del5NCR  = "5'NCR-del"
	Del3NCR  = "3'NCR-del"
	DelCDS   = "CDS-del"
	DelCDS3X = "CDS-3Xdel"

	Ins5CTS  = "5'CTS-ins"
	Ins3CTS  = "3'CTS-ins"
	Ins5NCR  = "5'NCR-ins"
	Ins3NCR  = "3'NCR-ins"
	InsCDS   = "CDS-ins"
	InsCDS3X = "CDS-3Xins"
	Ins5Ext  = "5'NCR-ext"
	Ins3Ext  = "3'NCR-ext"

	Mut5CTS = "5'CTS-mut"
	Mut3CTS = "3'CTS-mut"
)

// Record is the typed curation flag tuple of spec §3: {kind, profile_pos,
// query_pos, variant, length}.
type Record struct {
	Kind       string
	ProfilePos string
	QueryPos   string
	Variant    string
	Length     int
}

// posString renders a 1-based position or range the way spec §3/§4.4
// describe: "n" for a single position, "n..m" for a range.
func posString(positions []int) string {
	if len(positions) == 1 {
		return fmt.Sprintf("%d", positions[0])
	}
	return fmt.Sprintf("%d..%d", positions[0], positions[len(positions)-1])
}
