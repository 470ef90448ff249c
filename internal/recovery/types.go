package recovery

import "encoding/json"

// GrammarPoint is one grammar item attached to a sentence analysis.
type GrammarPoint struct {
	Point       string `json:"point,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Example     string `json:"example,omitempty"`
	Usage       string `json:"usage,omitempty"`
}

// Phrase is a highlighted phrase with its translation and usage notes.
type Phrase struct {
	Phrase      string `json:"phrase,omitempty"`
	Translation string `json:"translation,omitempty"`
	Usage       string `json:"usage,omitempty"`
	Example     string `json:"example,omitempty"`
	Type        string `json:"type,omitempty"`
}

// SentenceAnalysis is the per-sentence unit of a parsed model reply. The
// model is loose about which of grammar/grammarPoints/phrases it emits, so
// all three are accepted.
type SentenceAnalysis struct {
	ID            string         `json:"id,omitempty"`
	Original      string         `json:"original,omitempty"`
	Translation   string         `json:"translation,omitempty"`
	Structure     string         `json:"structure,omitempty"`
	Grammar       []GrammarPoint `json:"grammar,omitempty"`
	GrammarPoints []GrammarPoint `json:"grammarPoints,omitempty"`
	Breakdown     string         `json:"breakdown,omitempty"`
	KeyPoints     string         `json:"keyPoints,omitempty"`
	Phrases       []Phrase       `json:"phrases,omitempty"`
}

// Result is a structurally valid batch analysis. At least one of Title,
// Paragraphs or Sentences is populated; Recover guarantees this.
type Result struct {
	Title      string             `json:"title,omitempty"`
	Overview   string             `json:"overview,omitempty"`
	Phrases    []Phrase           `json:"phrases,omitempty"`
	Sentences  []SentenceAnalysis `json:"sentences,omitempty"`
	Paragraphs []json.RawMessage  `json:"paragraphs,omitempty"`

	// Degraded marks the fallback stub. The orchestrator still merges the
	// stub's sentences but does not adopt its title or overview.
	Degraded bool `json:"-"`
}
