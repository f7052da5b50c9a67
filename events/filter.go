package events

// SortedMinusSet returns the elements of sorted (already sorted ascending)
// that are not in exclude, preserving order. Used to compute E_D = D \ A
// (spec §4.4) from the sorted D column list and the A membership set.
func SortedMinusSet(sorted []int, exclude map[int]bool) []int {
	var out []int
	for _, c := range sorted {
		if !exclude[c] {
			out = append(out, c)
		}
	}
	return out
}
