package search

import "strings"

// TokenSet lowercases s and splits it on whitespace into a set.
func TokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// LexicalScore is |q ∩ d| / |q| over the query token set q and the token set d of text.
// It is normalized by the query side only, so a long document is not penalized for
// extra tokens. Either side empty scores 0.
func LexicalScore(query map[string]struct{}, text string) float64 {
	if len(query) == 0 {
		return 0
	}
	doc := TokenSet(text)
	if len(doc) == 0 {
		return 0
	}
	var hit int
	for t := range query {
		if _, ok := doc[t]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(query))
}
