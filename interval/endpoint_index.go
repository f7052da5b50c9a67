package interval

import (
	"math"
	"sort"
)

// PosType is the type used to represent interval coordinates.  int32 should be
// wide enough for some time to come, since that's what BAM is limited to.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// EndpointIndex is the result of a SearchPosTypes lookup into a sorted
// endpoint slice.
type EndpointIndex uint32

// SearchPosTypes returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).  It's exactly the same
// as sort.SearchInts(), except for PosType.
func SearchPosTypes(a []PosType, x PosType) EndpointIndex {
	return EndpointIndex(sort.Search(len(a), func(i int) bool { return a[i] >= x }))
}
