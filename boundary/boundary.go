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

// Package boundary parses the per-strain profile-region boundary file and
// the per-profile accepted-variant lookup (whitelist) table used to drive
// influenza autocuration.
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

// Region names, in tiling order.
const (
	CTS5 = "CTS5"
	NCR5 = "NCR5"
	CDS  = "CDS"
	NCR3 = "NCR3"
	CTS3 = "CTS3"
)

// ErrStrainNotFound is returned by Load when no boundary row's strain_id
// matches the requested strain.
var ErrStrainNotFound = errors.New("boundary: strain not found")

// Interval is a 1-based closed interval [Start, End] in canonical profile
// coordinates.
type Interval struct {
	Start int
	End   int
}

// Contains reports whether pos lies within iv, inclusive.
func (iv Interval) Contains(pos int) bool {
	return iv.Start <= pos && pos <= iv.End
}

// Intersects reports whether iv intersects [start, end].
func (iv Interval) Intersects(start, end int) bool {
	return iv.Start <= end && iv.End >= start
}

// Boundaries holds the five tiling regions for one strain, derived from a
// boundary-file row per spec §3/§4.1.
type Boundaries struct {
	StrainID string
	Regions  map[string]Interval
	// End is the canonical profile length (== Regions[CTS3].End).
	End int
}

// Region returns the canonical-coordinate interval for name, which must be
// one of CTS5, NCR5, CDS, NCR3, CTS3.
func (b Boundaries) Region(name string) Interval {
	return b.Regions[name]
}

// Ordered returns the five regions in tiling order, paired with their names.
func (b Boundaries) Ordered() []struct {
	Name string
	Ivl  Interval
} {
	names := [...]string{CTS5, NCR5, CDS, NCR3, CTS3}
	out := make([]struct {
		Name string
		Ivl  Interval
	}, len(names))
	for i, n := range names {
		out[i].Name = n
		out[i].Ivl = b.Regions[n]
	}
	return out
}

// Load reads the boundary file at path and returns the Boundaries row whose
// strain_id (the first field before the first '|') equals strainID. The
// file is line-oriented, each line of the form:
//
//	strain_id|START=n|CTS5=n|ATG=n|STOP=n|CTS3=n|END=n
//
// with the six keys allowed in any order. The first matching line wins.
func Load(ctx context.Context, path, strainID string) (Boundaries, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return Boundaries{}, errors.Wrapf(err, "boundary: opening %s", path)
	}
	defer func() { _ = f.Close(ctx) }()
	return parseBoundaries(f.Reader(ctx), strainID)
}

func parseBoundaries(r io.Reader, strainID string) (Boundaries, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if fields[0] != strainID {
			continue
		}
		raw := make(map[string]int, 6)
		for _, tok := range fields[1:] {
			kv := strings.SplitN(tok, "=", 2)
			if len(kv) != 2 {
				return Boundaries{}, errors.Errorf("boundary: malformed token %q for strain %s", tok, strainID)
			}
			n, err := strconv.Atoi(strings.TrimSpace(kv[1]))
			if err != nil {
				return Boundaries{}, errors.Wrapf(err, "boundary: malformed coordinate %q for strain %s", tok, strainID)
			}
			raw[kv[0]] = n
		}
		for _, key := range [...]string{"START", "CTS5", "ATG", "STOP", "CTS3", "END"} {
			if _, ok := raw[key]; !ok {
				return Boundaries{}, errors.Errorf("boundary: strain %s missing required key %s", strainID, key)
			}
		}
		b := Boundaries{
			StrainID: strainID,
			Regions: map[string]Interval{
				CTS5: {raw["START"], raw["CTS5"]},
				NCR5: {raw["CTS5"] + 1, raw["ATG"] - 1},
				CDS:  {raw["ATG"], raw["STOP"]},
				NCR3: {raw["STOP"] + 1, raw["CTS3"] - 1},
				CTS3: {raw["CTS3"], raw["END"]},
			},
			End: raw["END"],
		}
		if err := b.validate(); err != nil {
			return Boundaries{}, err
		}
		return b, scanner.Err()
	}
	if err := scanner.Err(); err != nil {
		return Boundaries{}, err
	}
	return Boundaries{}, errors.Wrapf(ErrStrainNotFound, "strain %s", strainID)
}

// validate enforces the invariants of spec §3: START=1, strict region
// ordering, and exact tiling of [1, END].
func (b Boundaries) validate() error {
	cts5 := b.Regions[CTS5]
	ncr5 := b.Regions[NCR5]
	cds := b.Regions[CDS]
	ncr3 := b.Regions[NCR3]
	cts3 := b.Regions[CTS3]
	if cts5.Start != 1 {
		return errors.Errorf("boundary: START must be 1, got %d", cts5.Start)
	}
	if !(cts5.End < cds.Start && cds.Start <= cds.End && cds.End < cts3.Start && cts3.Start <= cts3.End) {
		return errors.Errorf("boundary: region ordering invariant violated: %+v", b.Regions)
	}
	prev := 0
	for _, r := range b.Ordered() {
		if r.Ivl.Start != prev+1 {
			return errors.Errorf("boundary: region %s does not tile from %d (got start %d)", r.Name, prev+1, r.Ivl.Start)
		}
		if r.Ivl.End < r.Ivl.Start-1 {
			return errors.Errorf("boundary: region %s has End < Start-1", r.Name)
		}
		prev = r.Ivl.End
	}
	if prev != b.End {
		return errors.Errorf("boundary: regions do not tile to END (got %d, want %d)", prev, b.End)
	}
	_ = ncr5
	return nil
}
