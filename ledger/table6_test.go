package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/flu-curate/flagengine"
)

func TestParseTable6RoundTrip(t *testing.T) {
	const tsv = "PROFILE_NAME\tSTATUS_THIS_MONTH\tLAST_UPDATED\tFLU_SUBTYPE\tAUTO_ALIGNMENT_ISSUE\tPOS_PROFILE\tMUTATION_SUM\tACCESSION_TOTAL\tCURRENT_MONTH_INCREASE\tPAST_MONTH_INCREASE\tACCESSION_LIST\n" +
		"P1\tUnchanged\t2026-06-01\tSTRAIN\tCDS-del\t4..6\t\t2\t0\t1\tACC1,ACC2\n"
	rows, err := parseTable6(strings.NewReader(tsv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "P1", rows[0].ProfileName)
	assert.Equal(t, 2, rows[0].AccessionTotal)
	assert.Equal(t, []string{"ACC1", "ACC2"}, rows[0].AccessionList)

	var sb strings.Builder
	require.NoError(t, writeTable6(&sb, rows))
	assert.Contains(t, sb.String(), "P1\tUnchanged\t2026-06-01\tSTRAIN\tCDS-del\t4..6\t\t2\t0\t1\tACC1,ACC2")
}

func TestRolloverRevertsPastMonthRows(t *testing.T) {
	rows := []Row{{
		ProfileName:          "P1",
		Status:               "Updated",
		LastUpdated:          time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
		CurrentMonthIncrease: 3,
	}}
	Rollover(rows, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Unchanged", rows[0].Status)
	assert.Equal(t, 3, rows[0].PastMonthIncrease)
	assert.Equal(t, 0, rows[0].CurrentMonthIncrease)
}

func TestRolloverLeavesCurrentMonthRows(t *testing.T) {
	rows := []Row{{
		ProfileName:          "P1",
		Status:               "Updated",
		LastUpdated:          time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC),
		CurrentMonthIncrease: 3,
	}}
	Rollover(rows, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Updated", rows[0].Status)
	assert.Equal(t, 3, rows[0].CurrentMonthIncrease)
}

func TestUpdateAppendsNewRow(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	flag := flagengine.Record{Kind: "CDS-del", ProfilePos: "4..6", Variant: "del", Length: 3}
	rows := Update(nil, "P1", "STRAIN", "ACC1", flag, now)
	require.Len(t, rows, 1)
	assert.Equal(t, "New", rows[0].Status)
	assert.Equal(t, 1, rows[0].AccessionTotal)
	assert.Equal(t, []string{"ACC1"}, rows[0].AccessionList)
}

func TestUpdateMatchesExistingRowAndIncrements(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	existing := []Row{{
		ProfileName:        "P1",
		Status:             "Unchanged",
		FluSubtype:         "STRAIN",
		AutoAlignmentIssue: "CDS-del",
		PosProfile:         "4..6",
		AccessionTotal:     1,
		AccessionList:      []string{"ACC1"},
	}}
	flag := flagengine.Record{Kind: "CDS-del", ProfilePos: "4..6", Variant: "del", Length: 3}
	rows := Update(existing, "P1", "STRAIN", "ACC2", flag, now)
	require.Len(t, rows, 1)
	assert.Equal(t, "Updated", rows[0].Status)
	assert.Equal(t, 2, rows[0].AccessionTotal)
	assert.Equal(t, 1, rows[0].CurrentMonthIncrease)
	assert.Equal(t, []string{"ACC1", "ACC2"}, rows[0].AccessionList)
}

func TestUpdateDuplicateAccessionIsNoop(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	existing := []Row{{
		ProfileName:        "P1",
		FluSubtype:         "STRAIN",
		AutoAlignmentIssue: "CDS-del",
		PosProfile:         "4..6",
		AccessionTotal:     1,
		AccessionList:      []string{"ACC1"},
	}}
	flag := flagengine.Record{Kind: "CDS-del", ProfilePos: "4..6", Variant: "del", Length: 3}
	rows := Update(existing, "P1", "STRAIN", "ACC1", flag, now)
	assert.Equal(t, 1, rows[0].AccessionTotal)
}

func TestUpdateNCRExtIgnoresPosProfileInMatch(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	existing := []Row{{
		ProfileName:        "P1",
		FluSubtype:         "STRAIN",
		AutoAlignmentIssue: "5'NCR-ext",
		PosProfile:         "",
		AccessionTotal:     1,
		AccessionList:      []string{"ACC1"},
	}}
	// a different profile_pos should still match, since POS_PROFILE isn't
	// part of the match key for *-ext flags.
	flag := flagengine.Record{Kind: "5'NCR-ext", ProfilePos: "0..1", Variant: "GG", Length: 2}
	rows := Update(existing, "P1", "STRAIN", "ACC2", flag, now)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].AccessionTotal)
}

func TestUpdateCTSMutAccumulatesMutationSum(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	flag := flagengine.Record{Kind: "5'CTS-mut", ProfilePos: "1..2", Variant: "TT", Length: 2}
	rows := Update(nil, "P1", "STRAIN", "ACC1", flag, now)
	rows = Update(rows, "P1", "STRAIN", "ACC2", flag, now)
	require.Len(t, rows, 1)
	assert.Equal(t, "TT:2", rows[0].MutationSum)
}

func TestSortRowsOrdering(t *testing.T) {
	rows := []Row{
		{ProfileName: "B", AccessionTotal: 5},
		{ProfileName: "A", AccessionTotal: 1},
		{ProfileName: "A", AccessionTotal: 9},
	}
	sortRows(rows)
	assert.Equal(t, "A", rows[0].ProfileName)
	assert.Equal(t, 9, rows[0].AccessionTotal)
	assert.Equal(t, "A", rows[1].ProfileName)
	assert.Equal(t, 1, rows[1].AccessionTotal)
	assert.Equal(t, "B", rows[2].ProfileName)
}
