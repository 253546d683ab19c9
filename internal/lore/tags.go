package lore

import (
	"sort"
	"strings"
)

const maxTags = 8

// stopWords are common function words excluded from tag profiles.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "it": {}, "its": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "from": {}, "as": {}, "has": {}, "have": {},
}

// tokenize splits text on non-alphanumeric runs, lower-cases the
// pieces and drops stop words and tokens of length <= 2.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isAlphanumeric(r)
	})
	tokens := fields[:0]
	for _, tok := range fields {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func isAlphanumeric(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// tagProfile counts token occurrences across the given text and
// returns the top tags ranked by count, ties broken by first-seen
// order so repeated indexing of the same content is deterministic.
func tagProfile(text string) ([]string, map[string]int) {
	counts := map[string]int{}
	var order []string
	for _, tok := range tokenize(text) {
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > maxTags {
		ranked = ranked[:maxTags]
	}
	return ranked, counts
}
