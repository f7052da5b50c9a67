// Package classify defines the homology-classifier collaborator (C2):
// given a query sequence, determine which profile it belongs to. The
// classification algorithm itself (sequence-homology search, e.g. BLAST) is
// an external collaborator and out of scope for this module; only the
// interface and the Unknown sentinel are specified here (spec §1, §4.5).
package classify

import "context"

// Result is the outcome of classifying one query sequence.
type Result struct {
	// ProfileID names the curated multiple-sequence profile (e.g. a FASTA
	// filename under the profile directory) the query was assigned to.
	ProfileID string
	// StrainID is "[Species]_[Segment]_[Subtype]" and keys the boundary file.
	StrainID string
	// Identity is the fractional sequence identity to the top hit, in [0,1].
	Identity float64
	// Unknown is true when the classifier found no confident match; in that
	// case ProfileID, StrainID, and Identity are meaningless and the caller
	// must follow spec §4.5 step 1 (Ambig-Seq, early halt).
	Unknown bool
}

// Classifier assigns a query sequence to a profile/strain. Implementations
// are free to use any homology-search backend; this package only fixes the
// contract.
type Classifier interface {
	Classify(ctx context.Context, accession, sequence string) (Result, error)
}
