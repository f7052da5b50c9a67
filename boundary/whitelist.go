package boundary

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// WhitelistEntry is one accepted-variant range for a profile, per spec §3.
type WhitelistEntry struct {
	FlagLabel string
	Start     int
	End       int
}

// Whitelist is the set of accepted-variant ranges for a single profile.
type Whitelist struct {
	entries []WhitelistEntry
}

// Accept implements spec §4.6: accept(flag_label, start, end) is true iff
// some whitelist row matches flag_label and wholly contains [start, end].
func (w Whitelist) Accept(flagLabel string, start, end int) bool {
	for _, e := range w.entries {
		if e.FlagLabel == flagLabel && e.Start <= start && e.End >= end {
			return true
		}
	}
	return false
}

// Empty reports whether the whitelist has no entries. A profile with no
// whitelist rows is legal per spec §4.1.
func (w Whitelist) Empty() bool { return len(w.entries) == 0 }

// LoadWhitelist reads the tab-separated lookup table at path and returns all
// rows whose first column equals profileID. An empty result is legal.
func LoadWhitelist(ctx context.Context, path, profileID string) (Whitelist, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return Whitelist{}, errors.Wrapf(err, "boundary: opening %s", path)
	}
	defer func() { _ = f.Close(ctx) }()
	return parseWhitelist(f.Reader(ctx), profileID)
}

func parseWhitelist(r io.Reader, profileID string) (Whitelist, error) {
	scanner := bufio.NewScanner(r)
	var w Whitelist
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			continue
		}
		if cols[0] != profileID {
			continue
		}
		start, end, err := parseRange(cols[2])
		if err != nil {
			return Whitelist{}, errors.Wrapf(err, "boundary: lookup table line %d", lineNo)
		}
		if start > end {
			return Whitelist{}, errors.Errorf("boundary: lookup table line %d has start>end (%d..%d)", lineNo, start, end)
		}
		w.entries = append(w.entries, WhitelistEntry{FlagLabel: cols[1], Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return Whitelist{}, err
	}
	return w, nil
}

// parseRange parses either "n" or "n..m" into (start, end).
func parseRange(s string) (int, int, error) {
	parts := strings.SplitN(s, "..", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid range %q", s)
	}
	if len(parts) == 1 {
		return start, start, nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid range %q", s)
	}
	return start, end, nil
}
