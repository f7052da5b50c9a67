// Package fasta parses and writes order-preserving FASTA records (the
// profile-plus-query multiple alignments the curation pipeline reads and
// writes), as opposed to the teacher's original faidx-indexed random-access
// reader, which nothing in this pipeline needs (profiles are only ever
// shelled out to the aligner by path, never sliced by coordinate in Go).
package fasta

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// Record is a single named FASTA sequence, order-preserving: a multiple
// alignment's row order carries meaning (the last row is always the query,
// per msalign.LoadAlignment).
type Record struct {
	Name string
	Seq  string
}

// ReadRecords parses r into an ordered slice of Records, preserving file
// order. It is used where row order is semantically significant, such as a
// profile-plus-query multiple alignment (the last record is the query).
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	var seq strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			if len(records) > 0 {
				records[len(records)-1].Seq = seq.String()
			}
			seq.Reset()
			name := strings.TrimPrefix(line, ">")
			if i := strings.IndexAny(name, " \t"); i >= 0 {
				name = name[:i]
			}
			records = append(records, Record{Name: name})
			continue
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "fasta: reading records")
	}
	if len(records) > 0 {
		records[len(records)-1].Seq = seq.String()
	}
	return records, nil
}

// ReadRecordsAtPath opens path (local or blob-store, per grailbio/base/file)
// and parses it with ReadRecords.
func ReadRecordsAtPath(ctx context.Context, path string) ([]Record, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "fasta: opening %s", path)
	}
	defer func() { _ = f.Close(ctx) }()
	return ReadRecords(f.Reader(ctx))
}

// WriteRecords writes records to w in FASTA format, wrapping sequence lines
// at 70 columns (the common FASTA convention, matched so round-tripped
// alignments are diff-friendly against aligner output).
func WriteRecords(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.WriteString(">" + rec.Name + "\n"); err != nil {
			return errors.Wrap(err, "fasta: writing defline")
		}
		for i := 0; i < len(rec.Seq); i += 70 {
			end := i + 70
			if end > len(rec.Seq) {
				end = len(rec.Seq)
			}
			if _, err := bw.WriteString(rec.Seq[i:end]); err != nil {
				return errors.Wrap(err, "fasta: writing sequence")
			}
			if _, err := bw.WriteString("\n"); err != nil {
				return errors.Wrap(err, "fasta: writing sequence")
			}
		}
	}
	return bw.Flush()
}
