package analysis

import (
	"strconv"

	"github.com/wordlens/wordlens/internal/utils"
)

// Prompt rendering uses pooled buffers; analyses render four prompts per
// cache miss and the pool keeps that off the allocator.

func renderRelatedWordsPrompt(relation, word, context string, limit int) string {
	buf := utils.Get()
	defer utils.Put(buf)

	_, _ = buf.WriteString("List up to ")
	_, _ = buf.WriteString(strconv.Itoa(limit))
	_, _ = buf.WriteString(" ")
	_, _ = buf.WriteString(relation)
	_, _ = buf.WriteString(" of the word \"")
	_, _ = buf.WriteString(word)
	_, _ = buf.WriteString("\"")
	if context != "" {
		_, _ = buf.WriteString(" as used in the context \"")
		_, _ = buf.WriteString(context)
		_, _ = buf.WriteString("\"")
	}
	_, _ = buf.WriteString(". Respond with a JSON array of objects, each with ")
	_, _ = buf.WriteString("\"word\" (string) and \"confidence\" (number between 0 and 1). ")
	_, _ = buf.WriteString("Respond with the JSON array only, no prose.")
	return buf.String()
}

func renderDefinitionPrompt(word, partOfSpeech string) string {
	buf := utils.Get()
	defer utils.Put(buf)

	_, _ = buf.WriteString("Give a concise dictionary definition of the word \"")
	_, _ = buf.WriteString(word)
	_, _ = buf.WriteString("\"")
	if partOfSpeech != "" {
		_, _ = buf.WriteString(" as a ")
		_, _ = buf.WriteString(partOfSpeech)
	}
	_, _ = buf.WriteString(". Respond with the definition text only.")
	return buf.String()
}

func renderContextPrompt(word, context string) string {
	buf := utils.Get()
	defer utils.Put(buf)

	_, _ = buf.WriteString("Explain what the word \"")
	_, _ = buf.WriteString(word)
	_, _ = buf.WriteString("\" means in the context \"")
	_, _ = buf.WriteString(context)
	_, _ = buf.WriteString("\". Respond with a JSON array of objects, each with ")
	_, _ = buf.WriteString("\"context\" (string), \"meaning\" (string), and optionally ")
	_, _ = buf.WriteString("\"domain\" (string), \"sentiment\" (number between -1 and 1), ")
	_, _ = buf.WriteString("and \"examples\" (array of strings). ")
	_, _ = buf.WriteString("Respond with the JSON array only, no prose.")
	return buf.String()
}
