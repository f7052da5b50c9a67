// Package msalign runs and loads the multiple-sequence alignment of a query
// against a curated profile (C3), the collaborator sitting between
// classification and coordinate remapping in the curation pipeline.
package msalign

import (
	"context"

	"github.com/pkg/errors"

	"github.com/grailbio/flu-curate/encoding/fasta"
)

// Aligner aligns a query FASTA file against a profile FASTA file and
// returns the path to the resulting multi-FASTA alignment. Implementations
// may shell out to an external tool (MuscleAligner) or, in tests, return a
// precomputed alignment.
type Aligner interface {
	Align(ctx context.Context, profilePath, queryPath string) (alignmentPath string, err error)
}

// AlignmentShapeError reports that a loaded alignment violates the
// "last record is the query, all rows equal length, at least two rows"
// contract (spec §3, §7).
type AlignmentShapeError struct {
	Path   string
	Reason string
}

func (e *AlignmentShapeError) Error() string {
	return "msalign: " + e.Path + ": " + e.Reason
}

// Alignment is a loaded multi-FASTA alignment: one or more profile member
// rows followed by the query row, all of equal length.
type Alignment struct {
	ProfileNames []string
	ProfileRows  []string
	QueryName    string
	Query        string
}

// LoadAlignment reads path (the output of an Aligner) and validates its
// shape: at least two records, all rows equal length, the last record is
// the query.
func LoadAlignment(ctx context.Context, path string) (Alignment, error) {
	records, err := fasta.ReadRecordsAtPath(ctx, path)
	if err != nil {
		return Alignment{}, errors.Wrapf(err, "msalign: loading %s", path)
	}
	if len(records) < 2 {
		return Alignment{}, &AlignmentShapeError{Path: path, Reason: "fewer than two rows"}
	}
	want := len(records[0].Seq)
	for _, r := range records {
		if len(r.Seq) != want {
			return Alignment{}, &AlignmentShapeError{Path: path, Reason: "rows are not all equal length"}
		}
	}

	aln := Alignment{}
	for _, r := range records[:len(records)-1] {
		aln.ProfileNames = append(aln.ProfileNames, r.Name)
		aln.ProfileRows = append(aln.ProfileRows, r.Seq)
	}
	last := records[len(records)-1]
	aln.QueryName = last.Name
	aln.Query = last.Seq
	return aln, nil
}
