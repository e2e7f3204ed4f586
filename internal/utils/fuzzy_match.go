package utils

import (
	"strings"
)

// FuzzyMatch reports whether a suggestion value matches what the user has
// typed so far. Matching is case-insensitive: a substring match, then the
// same after expanding abbreviations ("mt pl" matches "Mount Pleasant"),
// then in-order word prefixes ("bor bro" matches "Borrowdale Brooke").
// An empty query matches everything.
func FuzzyMatch(query, value string) bool {
	queryLower := NormalizeName(query)
	valueLower := NormalizeName(value)

	if queryLower == "" {
		return true
	}

	// Exact match
	if queryLower == valueLower {
		return true
	}

	// Contains match
	if strings.Contains(valueLower, queryLower) {
		return true
	}

	// Expand common place-name abbreviations
	expanded := expandAliases(queryLower)
	if expanded != queryLower && strings.Contains(valueLower, expanded) {
		return true
	}

	return wordPrefixMatch(strings.Fields(expanded), strings.Fields(valueLower))
}

// NormalizeName lowercases s and collapses runs of whitespace
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Common abbreviations in suburb and city names
var aliases = map[string]string{
	"mt":   "mount",
	"st":   "saint",
	"ext":  "extension",
	"pk":   "park",
	"gdns": "gardens",
	"hts":  "heights",
}

func expandAliases(q string) string {
	words := strings.Fields(q)
	for i, w := range words {
		if full, ok := aliases[strings.TrimSuffix(w, ".")]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// wordPrefixMatch reports whether every query word is a prefix of a value
// word, in order
func wordPrefixMatch(query, value []string) bool {
	if len(query) == 0 {
		return false
	}
	j := 0
	for _, q := range query {
		for j < len(value) && !strings.HasPrefix(value[j], q) {
			j++
		}
		if j == len(value) {
			return false
		}
		j++
	}
	return true
}
