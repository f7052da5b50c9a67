// Package ledger implements the Table 6 bookkeeping contract (C10): a
// tab-separated external ledger of per-profile, per-flag-kind accession
// counts, rolled over monthly and updated as new curation flags arrive
// (spec §6). It is an external collaborator the CLI wires in after curation
// runs; the core curation package never imports it.
package ledger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"

	"github.com/grailbio/flu-curate/flagengine"
)

// Column order of the Table 6 TSV, per spec §6.
var columns = []string{
	"PROFILE_NAME", "STATUS_THIS_MONTH", "LAST_UPDATED", "FLU_SUBTYPE",
	"AUTO_ALIGNMENT_ISSUE", "POS_PROFILE", "MUTATION_SUM", "ACCESSION_TOTAL",
	"CURRENT_MONTH_INCREASE", "PAST_MONTH_INCREASE", "ACCESSION_LIST",
}

// Row is one Table 6 record.
type Row struct {
	ProfileName          string
	Status               string
	LastUpdated          time.Time
	FluSubtype           string
	AutoAlignmentIssue   string
	PosProfile           string
	MutationSum          string
	AccessionTotal       int
	CurrentMonthIncrease int
	PastMonthIncrease    int
	AccessionList        []string
}

const dateLayout = "2006-01-02"

// extFlags are the flag kinds whose match key excludes POS_PROFILE (spec
// §6 step 2).
var extFlags = map[string]bool{
	"5'NCR-ext": true,
	"3'NCR-ext": true,
}

// Load reads a Table 6 TSV file. A missing file is treated as an empty
// ledger (the first curation run creates it).
func Load(ctx context.Context, path string) ([]Row, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "ledger: opening %s", path)
	}
	defer func() { _ = f.Close(ctx) }()
	return parseTable6(f.Reader(ctx))
}

func parseTable6(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !scanner.Scan() {
		return nil, nil
	}
	header := strings.Split(scanner.Text(), "\t")
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}

	var rows []Row
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		get := func(col string) string {
			if i, ok := idx[col]; ok && i < len(fields) {
				return fields[i]
			}
			return ""
		}
		row := Row{
			ProfileName:        get("PROFILE_NAME"),
			Status:             get("STATUS_THIS_MONTH"),
			FluSubtype:         get("FLU_SUBTYPE"),
			AutoAlignmentIssue: get("AUTO_ALIGNMENT_ISSUE"),
			PosProfile:         get("POS_PROFILE"),
			MutationSum:        get("MUTATION_SUM"),
		}
		if t, err := time.Parse(dateLayout, get("LAST_UPDATED")); err == nil {
			row.LastUpdated = t
		}
		row.AccessionTotal, _ = strconv.Atoi(get("ACCESSION_TOTAL"))
		row.CurrentMonthIncrease, _ = strconv.Atoi(get("CURRENT_MONTH_INCREASE"))
		row.PastMonthIncrease, _ = strconv.Atoi(get("PAST_MONTH_INCREASE"))
		if list := get("ACCESSION_LIST"); list != "" {
			row.AccessionList = strings.Split(list, ",")
		}
		rows = append(rows, row)
	}
	return rows, scanner.Err()
}

// Save sorts rows by (PROFILE_NAME asc, ACCESSION_TOTAL desc) and writes
// the Table 6 TSV to path (spec §6 step 5).
func Save(ctx context.Context, path string, rows []Row) error {
	sortRows(rows)
	f, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "ledger: creating %s", path)
	}
	defer func() { _ = f.Close(ctx) }()
	return writeTable6(f.Writer(ctx), rows)
}

func writeTable6(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(columns, "\t") + "\n"); err != nil {
		return err
	}
	for _, row := range rows {
		lastUpdated := ""
		if !row.LastUpdated.IsZero() {
			lastUpdated = row.LastUpdated.Format(dateLayout)
		}
		fields := []string{
			row.ProfileName,
			row.Status,
			lastUpdated,
			row.FluSubtype,
			row.AutoAlignmentIssue,
			row.PosProfile,
			row.MutationSum,
			strconv.Itoa(row.AccessionTotal),
			strconv.Itoa(row.CurrentMonthIncrease),
			strconv.Itoa(row.PastMonthIncrease),
			strings.Join(row.AccessionList, ","),
		}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ProfileName != rows[j].ProfileName {
			return rows[i].ProfileName < rows[j].ProfileName
		}
		return rows[i].AccessionTotal > rows[j].AccessionTotal
	})
}

// Rollover implements spec §6 step 1: rows last touched before the first
// of the given month revert to Unchanged, with CURRENT_MONTH_INCREASE
// folded into PAST_MONTH_INCREASE.
func Rollover(rows []Row, now time.Time) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := range rows {
		if rows[i].LastUpdated.IsZero() || !rows[i].LastUpdated.Before(monthStart) {
			continue
		}
		rows[i].Status = "Unchanged"
		rows[i].PastMonthIncrease = rows[i].CurrentMonthIncrease
		rows[i].CurrentMonthIncrease = 0
	}
}

// Update applies one curation flag to rows per spec §6 steps 2-4, returning
// the (possibly appended-to) row slice. now stamps LAST_UPDATED on appended
// rows and on Unchanged rows that this call moves to Updated; Update does no
// rollover (see Rollover).
func Update(rows []Row, profile, strain, accession string, flag flagengine.Record, now time.Time) []Row {
	matchPos := flag.ProfilePos
	if extFlags[flag.Kind] {
		matchPos = "" // POS_PROFILE excluded from the match key for *-ext flags
	}

	idx := findMatch(rows, profile, strain, flag.Kind, matchPos, extFlags[flag.Kind])
	if idx < 0 {
		rows = append(rows, newRow(profile, strain, accession, flag, now))
		return rows
	}

	row := &rows[idx]
	if contains(row.AccessionList, accession) {
		return rows
	}
	row.AccessionList = append(row.AccessionList, accession)
	sort.Strings(row.AccessionList)

	if row.Status == "Unchanged" {
		row.Status = "Updated"
		row.LastUpdated = now
	}
	row.AccessionTotal++
	row.CurrentMonthIncrease++

	if flag.Kind == "5'CTS-mut" || flag.Kind == "3'CTS-mut" {
		row.MutationSum = bumpMutationSum(row.MutationSum, flag.Variant)
	}
	return rows
}

func findMatch(rows []Row, profile, strain, kind, posProfile string, isExt bool) int {
	for i, row := range rows {
		if row.ProfileName != profile || row.FluSubtype != strain || row.AutoAlignmentIssue != kind {
			continue
		}
		if !isExt && row.PosProfile != posProfile {
			continue
		}
		return i
	}
	return -1
}

func newRow(profile, strain, accession string, flag flagengine.Record, now time.Time) Row {
	posProfile := flag.ProfilePos
	mutSum := ""
	if extFlags[flag.Kind] {
		posProfile = ""
	} else if flag.Kind == "5'CTS-mut" || flag.Kind == "3'CTS-mut" {
		mutSum = fmt.Sprintf("%s:1", flag.Variant)
	}
	return Row{
		ProfileName:          profile,
		Status:               "New",
		LastUpdated:          now,
		FluSubtype:           strain,
		AutoAlignmentIssue:   flag.Kind,
		PosProfile:           posProfile,
		MutationSum:          mutSum,
		AccessionTotal:       1,
		CurrentMonthIncrease: 1,
		AccessionList:        []string{accession},
	}
}

// bumpMutationSum increments the per-variant counter within a
// "variant:count,variant:count" encoded MUTATION_SUM cell.
func bumpMutationSum(mutSum, variant string) string {
	counts := make(map[string]int)
	var order []string
	if mutSum != "" {
		for _, item := range strings.Split(mutSum, ",") {
			kv := strings.SplitN(item, ":", 2)
			if len(kv) != 2 {
				continue
			}
			n, _ := strconv.Atoi(kv[1])
			counts[kv[0]] = n
			order = append(order, kv[0])
		}
	}
	if _, ok := counts[variant]; !ok {
		order = append(order, variant)
	}
	counts[variant]++

	parts := make([]string, len(order))
	for i, key := range order {
		parts[i] = fmt.Sprintf("%s:%d", key, counts[key])
	}
	return strings.Join(parts, ",")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
