package query

import "strings"

// Expand widens a normalized query with synonyms. Each whitespace-separated
// term is kept in place, followed by up to two of its synonyms, so the
// expanded form stays close to the original term order:
//
//	"funny drama" -> "funny comedy humorous drama"
func Expand(normalized string) string {
	words := strings.Fields(normalized)
	expanded := make([]string, 0, len(words)*(1+maxSynonymsPerTerm))

	for _, word := range words {
		expanded = append(expanded, word)
		if syns, ok := synonyms[word]; ok {
			limit := min(maxSynonymsPerTerm, len(syns))
			expanded = append(expanded, syns[:limit]...)
		}
	}

	return strings.Join(expanded, " ")
}
