package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupMaximalRuns(t *testing.T) {
	runs := Group([]int{1, 2, 3, 7, 8, 10})
	require := assert.New(t)
	require.Len(runs, 3)
	require.Equal(Run{1, 2, 3}, runs[0])
	require.Equal(Run{7, 8}, runs[1])
	require.Equal(Run{10}, runs[2])
}

func TestGroupEmpty(t *testing.T) {
	assert.Nil(t, Group(nil))
}

func TestSortedMinusSet(t *testing.T) {
	out := SortedMinusSet([]int{1, 2, 3, 4}, map[int]bool{2: true, 4: true})
	assert.Equal(t, []int{1, 3}, out)
}
