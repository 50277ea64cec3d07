package models

// RelatedWord is a single synonym or antonym produced by language-model
// output parsing. Confidence falls back to a fixed default when the model
// response could not be parsed structurally.
type RelatedWord struct {
	Word       string  `json:"word"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context,omitzero"`
	Similarity float64 `json:"similarity,omitzero"`
}

// ContextualMeaning describes what a word means inside a specific context.
type ContextualMeaning struct {
	Context   string   `json:"context"`
	Meaning   string   `json:"meaning"`
	Domain    string   `json:"domain,omitzero"`
	Sentiment float64  `json:"sentiment,omitzero"`
	Examples  []string `json:"examples,omitzero"`
}

// AnalysisResult is the aggregate output of one word analysis. Confidence is
// derived: the mean of all related-word confidences across synonyms and
// antonyms, 0 when there are none.
type AnalysisResult struct {
	Word         string              `json:"word"`
	Definition   string              `json:"definition"`
	PartOfSpeech string              `json:"part_of_speech,omitzero"`
	Synonyms     []RelatedWord       `json:"synonyms"`
	Antonyms     []RelatedWord       `json:"antonyms"`
	Contexts     []ContextualMeaning `json:"contexts,omitzero"`
	Confidence   float64             `json:"confidence"`
}

// ComputeConfidence recalculates the derived aggregate confidence.
func (r *AnalysisResult) ComputeConfidence() {
	total := 0.0
	count := 0
	for _, w := range r.Synonyms {
		total += w.Confidence
		count++
	}
	for _, w := range r.Antonyms {
		total += w.Confidence
		count++
	}
	if count == 0 {
		r.Confidence = 0
		return
	}
	r.Confidence = total / float64(count)
}

// SemanticSearchResult is one ranked match from a vector similarity search.
type SemanticSearchResult struct {
	SubjectID  string  `json:"subject_id"`
	Similarity float64 `json:"similarity"`
}
