// Package ambiguity implements the query-sequence ambiguity screen (C4):
// base-composition thresholds that flag a query as too ambiguous or too
// distant from any profile to trust the downstream mutation analysis
// (spec §4.2). The thresholds themselves are specified; deriving them is a
// Non-goal.
package ambiguity

import (
	"strings"

	"github.com/grailbio/flu-curate/biosimd"
)

// Flag names, per spec §4.2.
const (
	ExcessN     = "Excess-N"
	ExcessAmbig = "Excess-Ambig"
	ExcessDist  = "Excess-Dist"
)

const threshold = 0.005

// IdentityThreshold is the minimum classifier identity below which
// Excess-Dist is raised.
const IdentityThreshold = 0.80

// Screen computes the ambiguity flags for a query sequence given the
// classifier identity reported alongside it (spec §4.2).
func Screen(sequence string, identity float64) []string {
	var flags []string
	length := len(sequence)
	if length == 0 {
		return flags
	}

	// Uppercase only (never collapse ambiguity codes to N): biosimd's
	// CleanASCIISeqInplace maps *every* non-ACGT character, including IUPAC
	// ambiguity codes, to 'N', which would make Excess-Ambig unreachable.
	upper := []byte(strings.ToUpper(sequence))

	var regular, indeterminate int
	if !biosimd.IsNonACGTNPresent(upper) {
		// Fast path: nothing but A/C/G/T/N, so the ambiguous count is zero and
		// we only need to count Ns.
		indeterminate = strings.Count(string(upper), "N")
		regular = length - indeterminate
	} else {
		regular = count(upper, "ACGT")
		indeterminate = count(upper, "N")
	}
	ambiguous := length - regular - indeterminate

	if float64(indeterminate)/float64(length) > threshold {
		flags = append(flags, ExcessN)
	}
	if float64(ambiguous)/float64(length) > threshold {
		flags = append(flags, ExcessAmbig)
	}
	if identity < IdentityThreshold {
		flags = append(flags, ExcessDist)
	}
	return flags
}

func count(seq []byte, set string) int {
	n := 0
	for _, b := range seq {
		if strings.IndexByte(set, b) >= 0 {
			n++
		}
	}
	return n
}
