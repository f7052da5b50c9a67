// Package curation composes the per-query autocuration pipeline (C9):
// classification, boundary/whitelist lookup, ambiguity screening,
// alignment, coordinate remapping, and flag emission, per spec §4.5.
package curation

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"github.com/grailbio/flu-curate/ambiguity"
	"github.com/grailbio/flu-curate/boundary"
	"github.com/grailbio/flu-curate/classify"
	"github.com/grailbio/flu-curate/encoding/fasta"
	"github.com/grailbio/flu-curate/flagengine"
	"github.com/grailbio/flu-curate/msalign"
	"github.com/grailbio/flu-curate/region"
	"github.com/grailbio/flu-curate/remap"
)

// Summary flag values, per spec §4.5 step 7.
const (
	SummaryAmbigSeq = "Ambig-Seq"
	SummaryFlagCDS  = "Flag-CDS"
	SummaryFlagNCR  = "Flag-NCR"
	SummaryPass     = "Pass"
)

// Opts holds the collaborators and reference paths Curate needs. Classifier
// and Aligner are externally replaceable per spec.md §1.
type Opts struct {
	Classifier classify.Classifier
	Aligner    msalign.Aligner

	// BoundaryPath is the per-strain boundary file (boundary.Load).
	BoundaryPath string
	// WhitelistPath is the per-profile lookup table (boundary.LoadWhitelist).
	WhitelistPath string
	// ProfileDir holds one FASTA file per profile, named "<ProfileID>".
	ProfileDir string
	// WorkDir is where the query is written before alignment and the
	// alignment is persisted after (spec §4.5 step 6).
	WorkDir string
}

// Report is the outcome of curating one query sequence.
type Report struct {
	Accession      string
	Profile        string
	Strain         string
	Identity       float64
	Summary        string
	AmbiguityFlags []string
	Mutations      FlagReport
}

// Curate runs the full pipeline for one query (accession, sequence) per
// spec §4.5.
func Curate(ctx context.Context, accession, sequence string, opts Opts) (Report, error) {
	result, err := opts.Classifier.Classify(ctx, accession, sequence)
	if err != nil {
		return Report{}, errors.Wrapf(err, "curation: classifying %s", accession)
	}
	if result.Unknown {
		return Report{
			Accession:      accession,
			Profile:        "Unknown",
			Summary:        SummaryAmbigSeq,
			AmbiguityFlags: []string{ambiguity.ExcessDist},
			Mutations:      Unknown(),
		}, nil
	}

	b, err := boundary.Load(ctx, opts.BoundaryPath, result.StrainID)
	if err != nil {
		return Report{}, errors.Wrapf(err, "curation: loading boundaries for strain %s", result.StrainID)
	}
	wl, err := boundary.LoadWhitelist(ctx, opts.WhitelistPath, result.ProfileID)
	if err != nil {
		return Report{}, errors.Wrapf(err, "curation: loading whitelist for profile %s", result.ProfileID)
	}

	ambigFlags := ambiguity.Screen(sequence, result.Identity)

	queryPath, err := writeQueryFASTA(ctx, opts.WorkDir, accession, sequence)
	if err != nil {
		return Report{}, err
	}
	profilePath := filepath.Join(opts.ProfileDir, result.ProfileID)

	alignmentPath, err := opts.Aligner.Align(ctx, profilePath, queryPath)
	if err != nil {
		return Report{}, errors.Wrapf(err, "curation: aligning %s against profile %s", accession, result.ProfileID)
	}
	aln, err := msalign.LoadAlignment(ctx, alignmentPath)
	if err != nil {
		return Report{}, errors.Wrapf(err, "curation: loading alignment for %s", accession)
	}

	cols := remap.Derive(aln.ProfileRows, aln.Query)
	rc := region.New(b)

	delFlags := flagengine.Deletions(cols, b, wl, rc)
	insFlags := flagengine.Insertions(cols, aln.Query, rc)
	subFlags := flagengine.Substitutions(cols, b, aln.ProfileRows, aln.Query)

	if err := persistOrDiscard(ctx, alignmentPath, opts.WorkDir, accession, len(insFlags) == 0); err != nil {
		log.Error.Printf("curation: %s: %v", accession, err)
	}

	all := make([]flagengine.Record, 0, len(delFlags)+len(insFlags)+len(subFlags))
	all = append(all, delFlags...)
	all = append(all, insFlags...)
	all = append(all, subFlags...)

	return Report{
		Accession:      accession,
		Profile:        result.ProfileID,
		Strain:         result.StrainID,
		Identity:       result.Identity,
		Summary:        summaryFlag(ambigFlags, all),
		AmbiguityFlags: ambigFlags,
		Mutations:      Flags(all),
	}, nil
}

// summaryFlag applies the precedence rules of spec §4.5 step 7.
func summaryFlag(ambigFlags []string, mutFlags []flagengine.Record) string {
	if len(ambigFlags) > 0 {
		return SummaryAmbigSeq
	}
	for _, f := range mutFlags {
		if strings.Contains(f.Kind, "CDS") {
			return SummaryFlagCDS
		}
	}
	for _, f := range mutFlags {
		if strings.Contains(f.Kind, "NCR") || strings.Contains(f.Kind, "CTS") {
			return SummaryFlagNCR
		}
	}
	return SummaryPass
}

func writeQueryFASTA(ctx context.Context, workDir, accession, sequence string) (string, error) {
	path := filepath.Join(workDir, accession+".query.fasta")
	f, err := file.Create(ctx, path)
	if err != nil {
		return "", errors.Wrapf(err, "curation: creating %s", path)
	}
	defer func() { _ = f.Close(ctx) }()
	if err := fasta.WriteRecords(f.Writer(ctx), []fasta.Record{{Name: accession, Seq: sequence}}); err != nil {
		return "", errors.Wrapf(err, "curation: writing %s", path)
	}
	return path, nil
}

// persistOrDiscard implements spec §4.5 step 6: an alignment with no
// insertion flags is snappy-compressed into the work directory (grounded on
// encoding/bampair's disk-shard compression pattern); otherwise the
// temporary alignment file is removed.
func persistOrDiscard(ctx context.Context, alignmentPath, workDir, accession string, keep bool) error {
	if !keep {
		return file.Remove(ctx, alignmentPath)
	}
	in, err := file.Open(ctx, alignmentPath)
	if err != nil {
		return errors.Wrapf(err, "opening alignment %s", alignmentPath)
	}
	defer func() { _ = in.Close(ctx) }()

	outPath := filepath.Join(workDir, accession+".aln.snappy")
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return errors.Wrapf(err, "creating %s", outPath)
	}
	defer func() { _ = out.Close(ctx) }()

	w := snappy.NewBufferedWriter(out.Writer(ctx))
	if _, err := io.Copy(w, in.Reader(ctx)); err != nil {
		return errors.Wrapf(err, "compressing alignment into %s", outPath)
	}
	return w.Close()
}
