package cache

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Key operation prefixes. A composite key is always
// operation:subject[:qualifier]* with discriminating parameters in a fixed
// order, so logically identical requests map to the same key.
const (
	OpAnalysis   = "analysis"
	OpSynonyms   = "synonyms"
	OpAntonyms   = "antonyms"
	OpDefinition = "definition"
	OpContext    = "context"
	OpEmbedding  = "embedding"
	OpSearch     = "search"
)

// generalContextToken marks the absence of a context. It is distinct from
// any hashed explicit context, including an explicit "general".
const generalContextToken = "_"

// maxInlineContext is the longest context string embedded verbatim in a key;
// anything longer is condensed to a 32-bit hash. Hash collisions between
// distinct long contexts are an accepted approximation.
const maxInlineContext = 32

// AnalysisKey is the aggregate cache key for one (word, context) analysis.
func AnalysisKey(word, context string) string {
	return OpAnalysis + ":" + normalizeWord(word) + ":" + ContextToken(context)
}

// SubOperationKey builds the cache key for one sub-operation (synonyms,
// antonyms, definition, context) of an analysis.
func SubOperationKey(op, word, context string) string {
	return op + ":" + normalizeWord(word) + ":" + ContextToken(context)
}

// DefinitionKey includes the optional part of speech as a qualifier.
func DefinitionKey(word, partOfSpeech string) string {
	pos := strings.ToLower(strings.TrimSpace(partOfSpeech))
	if pos == "" {
		pos = generalContextToken
	}
	return OpDefinition + ":" + normalizeWord(word) + ":" + pos
}

// EmbeddingKey keys a computed embedding by model and input text.
func EmbeddingKey(model, text string) string {
	return OpEmbedding + ":" + model + ":" + hashText(text)
}

// SearchKey keys a ranked search result list by everything the ranking
// depends on: query, limit, threshold, provider, and model.
func SearchKey(query string, limit int, threshold float64, provider, model string) string {
	return fmt.Sprintf("%s:%s:%d:%.4f:%s:%s", OpSearch, hashText(query), limit, threshold, provider, model)
}

// ContextToken condenses a free-text context into a bounded key segment.
// Empty contexts map to a reserved token that no explicit context produces.
func ContextToken(context string) string {
	context = strings.TrimSpace(strings.ToLower(context))
	if context == "" {
		return generalContextToken
	}
	if len(context) <= maxInlineContext && !strings.ContainsAny(context, ": \t\n") {
		return context
	}
	return hashText(context)
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

func hashText(text string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	return fmt.Sprintf("h%08x", h.Sum32())
}

// KeySimilarity is the normalized edit-distance similarity between two keys:
// (maxLen - levenshtein) / maxLen, in [0, 1]. Identical strings score 1,
// fully dissimilar strings of equal length score 0.
func KeySimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1
	}
	return float64(maxLen-levenshtein(a, b)) / float64(maxLen)
}

// FindSimilarKeys returns live keys sharing candidate's operation prefix
// whose similarity to candidate is at least threshold. This is a secondary
// lookup aid only; exact-match lookup is always the primary hit path.
func FindSimilarKeys(store Store, candidate string, threshold float64) []string {
	prefix, _, ok := strings.Cut(candidate, ":")
	if !ok {
		return nil
	}
	prefix += ":"

	var matches []string
	for _, key := range store.Keys() {
		if !strings.HasPrefix(key, prefix) || key == candidate {
			continue
		}
		if KeySimilarity(candidate, key) >= threshold {
			matches = append(matches, key)
		}
	}
	return matches
}

// levenshtein computes edit distance with the two-row dynamic program.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
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
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
