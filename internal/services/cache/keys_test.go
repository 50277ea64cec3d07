package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyConstruction(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		same bool
	}{
		{
			name: "identical requests produce identical keys",
			a:    AnalysisKey("Brilliant", "academic performance"),
			b:    AnalysisKey("brilliant", "academic performance"),
			same: true,
		},
		{
			name: "absent context differs from explicit general context",
			a:    AnalysisKey("bright", ""),
			b:    AnalysisKey("bright", "general"),
			same: false,
		},
		{
			name: "different contexts produce different keys",
			a:    AnalysisKey("bright", "light"),
			b:    AnalysisKey("bright", "intelligence"),
			same: false,
		},
		{
			name: "sub-operations partition the key space",
			a:    SubOperationKey(OpSynonyms, "bright", ""),
			b:    SubOperationKey(OpAntonyms, "bright", ""),
			same: false,
		},
		{
			name: "part of speech discriminates definition keys",
			a:    DefinitionKey("run", "noun"),
			b:    DefinitionKey("run", "verb"),
			same: false,
		},
		{
			name: "search keys include threshold",
			a:    SearchKey("happy", 10, 0.7, "remote", "nomic-embed-text"),
			b:    SearchKey("happy", 10, 0.8, "remote", "nomic-embed-text"),
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.same {
				assert.Equal(t, tt.a, tt.b)
			} else {
				assert.NotEqual(t, tt.a, tt.b)
			}
		})
	}
}

func TestContextTokenBoundsLongText(t *testing.T) {
	long := strings.Repeat("an arbitrarily long context ", 20)
	token := ContextToken(long)

	assert.LessOrEqual(t, len(token), maxInlineContext)
	assert.Equal(t, token, ContextToken(long), "hashing must be stable")
}

func TestKeySimilarity(t *testing.T) {
	assert.Equal(t, 1.0, KeySimilarity("synonyms:happy:_", "synonyms:happy:_"))

	// One substitution in a 16-char key.
	sim := KeySimilarity("synonyms:happy:_", "synonyms:hippy:_")
	assert.InDelta(t, 15.0/16.0, sim, 1e-9)

	// Bounds.
	assert.GreaterOrEqual(t, KeySimilarity("abc", "xyz"), 0.0)
	assert.LessOrEqual(t, KeySimilarity("abc", "xyz"), 1.0)
}

func TestFindSimilarKeys(t *testing.T) {
	s := NewMemoryStore(MemoryStoreOptions{})
	defer s.Stop()

	require.True(t, s.Set("synonyms:happy:_", 1, time.Minute))
	require.True(t, s.Set("synonyms:happier:_", 2, time.Minute))
	require.True(t, s.Set("antonyms:happy:_", 3, time.Minute))

	matches := FindSimilarKeys(s, "synonyms:happy:_", 0.8)

	// Same-prefix near-duplicates only; other operations never match.
	assert.Contains(t, matches, "synonyms:happier:_")
	assert.NotContains(t, matches, "antonyms:happy:_")
	assert.NotContains(t, matches, "synonyms:happy:_", "candidate itself is excluded")
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"same", "same", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "levenshtein(%q, %q)", tt.a, tt.b)
	}
}
