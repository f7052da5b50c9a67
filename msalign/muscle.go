package msalign

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// MuscleAligner shells out to an external MUSCLE-compatible binary to align
// a query against a precomputed profile, mirroring the `muscle -maxiters
// 1000 -profile -in1 <profile> -in2 <query> -out <alignment>` invocation
// that drives the curation pipeline's alignment step.
type MuscleAligner struct {
	// BinPath is the path to the muscle executable. Defaults to "muscle"
	// (resolved via $PATH) when empty.
	BinPath string
	// MaxIters is passed as -maxiters. Defaults to 1000 when zero.
	MaxIters int
	// OutputDir is the directory the alignment file is written into.
	OutputDir string
}

// Align runs muscle -profile, writing the alignment as
// "<OutputDir>/<query basename>.aln.fasta".
func (m MuscleAligner) Align(ctx context.Context, profilePath, queryPath string) (string, error) {
	bin := m.BinPath
	if bin == "" {
		bin = "muscle"
	}
	maxIters := m.MaxIters
	if maxIters == 0 {
		maxIters = 1000
	}
	alignmentPath := filepath.Join(m.OutputDir, filepath.Base(queryPath)+".aln.fasta")

	cmd := exec.CommandContext(ctx, bin,
		"-maxiters", strconv.Itoa(maxIters),
		"-profile",
		"-in1", profilePath,
		"-in2", queryPath,
		"-out", alignmentPath,
	)
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "msalign: running %s against profile %s, query %s", bin, profilePath, queryPath)
	}
	log.Debug.Printf("msalign: wrote alignment %s", alignmentPath)
	return alignmentPath, nil
}
