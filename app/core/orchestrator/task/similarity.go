package task

// Ratio measures similarity between two strings as 2*M/T, where M is the
// total length of matched blocks (longest-match-first, as in Python's
// difflib.SequenceMatcher) and T the combined length. Returns a value in
// [0, 1]; two empty strings are identical.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	bIndex := make(map[rune][]int, len(rb))
	for i, r := range rb {
		bIndex[r] = append(bIndex[r], i)
	}

	matched := matchLen(ra, rb, 0, len(ra), 0, len(rb), bIndex)
	return 2 * float64(matched) / float64(total)
}

// matchLen sums matched characters by recursively splitting around the
// longest common block of the two slices.
func matchLen(a, b []rune, aLo, aHi, bLo, bHi int, bIndex map[rune][]int) int {
	ai, bi, size := longestMatch(a, aLo, aHi, bLo, bHi, bIndex)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchLen(a, b, aLo, ai, bLo, bi, bIndex)
	matched += matchLen(a, b, ai+size, aHi, bi+size, bHi, bIndex)
	return matched
}

func longestMatch(a []rune, aLo, aHi, bLo, bHi int, bIndex map[rune][]int) (bestA, bestB, bestSize int) {
	bestA, bestB = aLo, bLo
	// lengths[j] holds the length of the match ending at a[i-1], b[j-1]
	lengths := make(map[int]int)
	for i := aLo; i < aHi; i++ {
		next := make(map[int]int)
		for _, j := range bIndex[a[i]] {
			if j < bLo || j >= bHi {
				continue
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		lengths = next
	}
	return bestA, bestB, bestSize
}
