package analysis

import (
	"encoding/json"
	"strings"

	"github.com/wordlens/wordlens/internal/models"
)

// fallbackConfidence is assigned to words recovered by the permissive parser
// when the model response had no usable structure.
const fallbackConfidence = 0.7

// ParseMode tags which stage of the two-stage parser produced a result, so
// callers branch explicitly instead of treating fallback as an exception.
type ParseMode int

const (
	ParseStructured ParseMode = iota
	ParseFallback
)

func (m ParseMode) String() string {
	if m == ParseStructured {
		return "structured"
	}
	return "fallback"
}

// parseRelatedWords interprets a raw model response as a list of related
// words. It attempts the requested JSON structure first; when that fails it
// degrades to a permissive line/comma split that extracts bare words with
// the fallback confidence. It never fails outright: a response with no
// extractable words yields an empty list.
func parseRelatedWords(raw string, limit int) ([]models.RelatedWord, ParseMode) {
	if structured, ok := parseStructuredWords(raw); ok {
		if len(structured) > limit {
			structured = structured[:limit]
		}
		return structured, ParseStructured
	}

	words := splitBareWords(raw, limit)
	related := make([]models.RelatedWord, 0, len(words))
	for _, w := range words {
		related = append(related, models.RelatedWord{
			Word:       w,
			Confidence: fallbackConfidence,
		})
	}
	return related, ParseFallback
}

func parseStructuredWords(raw string) ([]models.RelatedWord, bool) {
	payload, ok := extractJSONArray(raw)
	if !ok {
		return nil, false
	}

	var parsed []models.RelatedWord
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, false
	}

	cleaned := make([]models.RelatedWord, 0, len(parsed))
	for _, w := range parsed {
		w.Word = strings.ToLower(strings.TrimSpace(w.Word))
		if w.Word == "" {
			continue
		}
		if w.Confidence <= 0 || w.Confidence > 1 {
			w.Confidence = fallbackConfidence
		}
		cleaned = append(cleaned, w)
	}
	if len(cleaned) == 0 {
		return nil, false
	}
	return cleaned, true
}

// parseContextualMeanings applies the same two-stage strategy to contextual
// meaning responses; the fallback treats the whole response as one meaning.
func parseContextualMeanings(raw, context string) ([]models.ContextualMeaning, ParseMode) {
	if payload, ok := extractJSONArray(raw); ok {
		var parsed []models.ContextualMeaning
		if err := json.Unmarshal([]byte(payload), &parsed); err == nil {
			cleaned := make([]models.ContextualMeaning, 0, len(parsed))
			for _, m := range parsed {
				m.Meaning = strings.TrimSpace(m.Meaning)
				if m.Meaning == "" {
					continue
				}
				if m.Context == "" {
					m.Context = context
				}
				cleaned = append(cleaned, m)
			}
			if len(cleaned) > 0 {
				return cleaned, ParseStructured
			}
		}
	}

	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ParseFallback
	}
	return []models.ContextualMeaning{{Context: context, Meaning: text}}, ParseFallback
}

// parseDefinition strips quoting and markup noise from a definition reply.
func parseDefinition(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.Trim(text, "\"")
	if idx := strings.Index(text, "\n\n"); idx > 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// extractJSONArray finds the outermost JSON array in raw, tolerating prose
// or code fences around it.
func extractJSONArray(raw string) (string, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// splitBareWords extracts candidate words from unstructured text, splitting
// on newlines and commas and stripping list markers.
func splitBareWords(raw string, limit int) []string {
	seen := make(map[string]struct{})
	var words []string

	for _, line := range strings.Split(raw, "\n") {
		for _, piece := range strings.Split(line, ",") {
			w := cleanBareWord(piece)
			if w == "" {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
			if len(words) >= limit {
				return words
			}
		}
	}
	return words
}

func cleanBareWord(piece string) string {
	w := strings.TrimSpace(piece)
	w = strings.TrimLeft(w, "-*•0123456789.) \t")
	w = strings.Trim(w, "\"'`")
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" || strings.ContainsAny(w, "{}[]:") {
		return ""
	}
	// A fallback "word" spanning several tokens is prose, not a synonym.
	if len(strings.Fields(w)) > 3 {
		return ""
	}
	return w
}
