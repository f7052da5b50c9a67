// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
flu-curate runs the influenza autocuration pipeline against one query FASTA
record, printing a report of the deletion/insertion/substitution flags
found against its classified strain's curated profile, and optionally
records the flags into a Table 6 ledger.
*/

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/grailbio/flu-curate/classify"
	"github.com/grailbio/flu-curate/curation"
	"github.com/grailbio/flu-curate/encoding/fasta"
	"github.com/grailbio/flu-curate/flagengine"
	"github.com/grailbio/flu-curate/ledger"
	"github.com/grailbio/flu-curate/msalign"
)

var (
	queryPath     = flag.String("query", "", "Input query FASTA path (first record used); required")
	flagFilter    = flag.String("flag", "", "Restrict the printed report to one category: mut, ambig, ins, del, or sub; default prints everything")
	table6Path    = flag.String("table6", "", "Table 6 ledger TSV path; when set, emitted flags are recorded into the ledger after curation")
	boundaryPath  = flag.String("boundary", "", "Boundary file path (per-strain profile region coordinates); required")
	whitelistPath = flag.String("lookup", "", "Lookup table (whitelist) TSV path")
	profileDir    = flag.String("profile-dir", "", "Directory of curated profile FASTA files, one per PROFILE_NAME; required")
	workDir       = flag.String("work-dir", "", "Scratch directory for intermediate alignment files; defaults to the OS temp directory")
	muscleBin     = flag.String("muscle-bin", "muscle", "Path to the muscle-compatible profile-alignment binary")

	// Classification is an external collaborator (spec.md §1); these flags
	// let a caller supply a precomputed classification (e.g. from an
	// out-of-band BLAST run) rather than wiring in a live homology search.
	classProfile  = flag.String("profile", "", "Precomputed classification: profile ID the query was assigned to; required unless -unknown")
	classStrain   = flag.String("strain", "", "Precomputed classification: strain ID (boundary file key); required unless -unknown")
	classIdentity = flag.Float64("identity", 1.0, "Precomputed classification: fractional identity to the assigned profile")
	classUnknown  = flag.Bool("unknown", false, "Treat the query as unclassified (bypasses alignment entirely)")
)

var validFlagFilters = map[string]bool{"mut": true, "ambig": true, "ins": true, "del": true, "sub": true}

func usage() {
	fmt.Printf("Usage: %s -query PATH -boundary PATH -profile-dir DIR {-profile ID -strain ID | -unknown} [OPTIONS]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *queryPath == "" {
		log.Fatalf("missing required flag -query")
	}
	if *flagFilter != "" && !validFlagFilters[*flagFilter] {
		log.Fatalf("invalid -flag %q; must be one of mut, ambig, ins, del, sub", *flagFilter)
	}
	if !*classUnknown && (*boundaryPath == "" || *profileDir == "") {
		log.Fatalf("missing required reference: -boundary and -profile-dir must be set unless -unknown")
	}

	ctx := vcontext.Background()

	records, err := fasta.ReadRecordsAtPath(ctx, *queryPath)
	if err != nil {
		log.Fatalf("reading -query %s: %v", *queryPath, err)
	}
	if len(records) == 0 {
		log.Fatalf("-query %s contains no FASTA records", *queryPath)
	}
	first := records[0]
	accession := fasta.ExtractAccession(first.Name)

	work := *workDir
	if work == "" {
		work = os.TempDir()
	}

	classifier := classify.Static{}
	if !*classUnknown {
		if *classProfile == "" || *classStrain == "" {
			log.Fatalf("missing required flags -profile and -strain (or pass -unknown)")
		}
		classifier = classify.Static{
			accession: classify.Result{ProfileID: *classProfile, StrainID: *classStrain, Identity: *classIdentity},
		}
	}

	opts := curation.Opts{
		Classifier:    classifier,
		Aligner:       msalign.MuscleAligner{BinPath: *muscleBin, OutputDir: work},
		BoundaryPath:  *boundaryPath,
		WhitelistPath: *whitelistPath,
		ProfileDir:    *profileDir,
		WorkDir:       work,
	}

	report, err := curation.Curate(ctx, accession, first.Seq, opts)
	if err != nil {
		log.Fatalf("curating %s: %v", accession, err)
	}

	printReport(report, *flagFilter)

	if *table6Path != "" && !report.Mutations.IsUnknown() {
		if err := recordToLedger(ctx, *table6Path, report); err != nil {
			log.Fatalf("updating table6 %s: %v", *table6Path, err)
		}
	}
}

func printReport(report curation.Report, filter string) {
	fmt.Printf("accession\t%s\n", report.Accession)
	fmt.Printf("profile\t%s\n", report.Profile)
	fmt.Printf("summary\t%s\n", report.Summary)

	if filter == "" || filter == "ambig" {
		fmt.Printf("ambiguity\t%s\n", strings.Join(report.AmbiguityFlags, ","))
	}
	if report.Mutations.IsUnknown() {
		fmt.Printf("mutations\tUnknown\n")
		return
	}
	switch filter {
	case "", "mut":
		printFlags(report.Mutations.Records())
	case "ins", "del", "sub":
		printFlags(filterByCategory(report.Mutations.Records(), filter))
	}
}

// filterByCategory keeps only the flags belonging to category ("ins",
// "del", or "sub"), per spec.md §6's -flag selector. Flag kinds spell
// substitutions as "-mut" and 5'/3' terminal extensions as "-ext" (counted
// as insertions), so the CLI category names don't match the kind suffixes
// verbatim.
func filterByCategory(flags []flagengine.Record, category string) []flagengine.Record {
	suffix := map[string]string{"ins": "-ins", "del": "-del", "sub": "-mut"}[category]
	var out []flagengine.Record
	for _, f := range flags {
		if strings.HasSuffix(f.Kind, suffix) ||
			strings.HasSuffix(f.Kind, strings.Replace(suffix, "-", "-3X", 1)) ||
			(category == "ins" && strings.HasSuffix(f.Kind, "-ext")) {
			out = append(out, f)
		}
	}
	return out
}

func printFlags(flags []flagengine.Record) {
	for _, f := range flags {
		fmt.Printf("flag\t%s\t%s\t%s\t%s\t%d\n", f.Kind, f.ProfilePos, f.QueryPos, f.Variant, f.Length)
	}
}

func recordToLedger(ctx context.Context, path string, report curation.Report) error {
	rows, err := ledger.Load(ctx, path)
	if err != nil {
		return err
	}
	now := time.Now()
	ledger.Rollover(rows, now)
	for _, f := range report.Mutations.Records() {
		rows = ledger.Update(rows, report.Profile, report.Strain, report.Accession, f, now)
	}
	return ledger.Save(ctx, path, rows)
}
