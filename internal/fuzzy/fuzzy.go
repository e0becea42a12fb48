// Package fuzzy scores how alike two short strings are on a 0-100 scale.
//
// Ratio is the normalized indel similarity used by the matching thresholds:
// 100 * (1 - (insertions + deletions) / (len(a) + len(b))), computed over runes.
// Equivalently 200 * LCS(a, b) / (len(a) + len(b)).
package fuzzy

// Ratio returns the indel similarity of a and b in [0, 100].
// Two empty strings are identical and score 100.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return 200 * float64(lcsLength(ra, rb)) / float64(total)
}

// AtLeast reports whether Ratio(a, b) >= threshold.
func AtLeast(a, b string, threshold float64) bool {
	if a == b {
		return true
	}
	return Ratio(a, b) >= threshold
}

// lcsLength returns the length of the longest common subsequence using a
// single rolling row.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return 0
	}

	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		diag := 0 // row[j-1] from the previous iteration of i
		for j := 1; j <= len(b); j++ {
			up := row[j]
			if a[i-1] == b[j-1] {
				row[j] = diag + 1
			} else if row[j-1] > row[j] {
				row[j] = row[j-1]
			}
			diag = up
		}
	}
	return row[len(b)]
}
