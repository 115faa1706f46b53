// Package fuzzy scores how well a typed query matches a stop or place name.
// Scores run from 0 to 100 and tolerate typos, missing words and word order.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

const (
	// TokenSetCutoff is the lowest token-set score that counts as a match.
	TokenSetCutoff = 50
	// PartialCutoff is the lowest partial score that counts as a match.
	PartialCutoff = 60
)

// Fold lower-cases s, treats ё as е and collapses whitespace.
func Fold(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ё", "е")
	return strings.Join(strings.Fields(s), " ")
}

// Ratio is the Levenshtein similarity of a and b.
func Ratio(a, b string) int {
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if n == 0 {
		return 100
	}
	d := edlib.LevenshteinDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(n))))
}

// TokenSetRatio compares the shared words of a and b against each side's extra
// words, so word order and words present on one side only cost little.
func TokenSetRatio(a, b string) int {
	wordsA, wordsB := wordSet(a), wordSet(b)
	var common, onlyA, onlyB []string
	for w := range wordsA {
		if wordsB[w] {
			common = append(common, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range wordsB {
		if !wordsA[w] {
			onlyB = append(onlyB, w)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	shared := strings.Join(common, " ")
	restA, restB := strings.Join(onlyA, " "), strings.Join(onlyB, " ")
	if shared == "" {
		return Ratio(restA, restB)
	}
	withA, withB := joinWords(shared, restA), joinWords(shared, restB)
	return max(Ratio(shared, withA), Ratio(shared, withB), Ratio(withA, withB))
}

// PartialRatio is the best Ratio of the shorter string against every equally long
// slice of the longer one.
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}
	needle := string(short)
	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := Ratio(needle, string(long[i:i+len(short)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Score folds both strings and keeps the better of the token-set and partial
// scores that clear their cutoffs; 0 means no match.
func Score(query, candidate string) int {
	query, candidate = Fold(query), Fold(candidate)
	if query == "" || candidate == "" {
		return 0
	}
	score := 0
	if s := TokenSetRatio(query, candidate); s >= TokenSetCutoff {
		score = s
	}
	if s := PartialRatio(query, candidate); s >= PartialCutoff && s > score {
		score = s
	}
	return score
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func joinWords(a, b string) string {
	if b == "" {
		return a
	}
	return a + " " + b
}
