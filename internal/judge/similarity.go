package judge

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// DefaultThreshold is the minimum similarity for an answer to be accepted.
const DefaultThreshold = 0.6

// Normalize folds an answer into the form compared by Ratio: NFKC, narrow
// width, lower case, single spaces.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = width.Narrow.String(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// Ratio returns a similarity in [0,1] between two answers, computed as one
// minus the rune-level edit distance over the longer length. Two empty
// strings are identical.
func Ratio(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
