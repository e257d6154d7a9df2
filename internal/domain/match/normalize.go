package match

import (
	"sort"
	"strings"
	"unicode"
)

// clubSuffixWords are generic club-name words stripped before comparing team
// names, so "Bristol City" and "Bristol" land on the same key.
var clubSuffixWords = map[string]struct{}{
	"fc":        {},
	"afc":       {},
	"united":    {},
	"city":      {},
	"town":      {},
	"rovers":    {},
	"wanderers": {},
	"athletic":  {},
	"county":    {},
	"albion":    {},
}

// normalizeName lowercases, replaces punctuation with spaces, drops generic
// club-suffix words and collapses whitespace.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if _, drop := clubSuffixWords[f]; drop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// tokenSort orders the words of an already-normalized string so word order
// does not affect comparisons.
func tokenSort(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// normalizedLevenshtein returns the edit distance between a and b scaled to
// [0, 1] by the longer length. Two empty strings score zero.
func normalizedLevenshtein(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 0
	}
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return float64(levenshtein(ra, rb)) / float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
