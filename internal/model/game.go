package model

import (
	"sort"
	"strconv"
	"unicode"
)

// GameLess orders game identifiers naturally, so "Game 2" sorts before "Game 10".
// Runs of digits compare numerically; everything else compares byte-wise.
func GameLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := rune(a[0]), rune(b[0])
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			na, ra := leadingDigits(a)
			nb, rb := leadingDigits(b)
			ia, _ := strconv.ParseUint(na, 10, 64)
			ib, _ := strconv.ParseUint(nb, 10, 64)
			if ia != ib {
				return ia < ib
			}
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			a, b = ra, rb
			continue
		}
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

// SortGames sorts game identifiers in place using GameLess.
func SortGames(games []string) {
	sort.SliceStable(games, func(i, j int) bool { return GameLess(games[i], games[j]) })
}

func leadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
