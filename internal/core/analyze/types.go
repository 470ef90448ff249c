package analyze

import (
	"encoding/json"

	"github.com/mxppxm/english-tutor/internal/llm"
	"github.com/mxppxm/english-tutor/internal/recovery"
	"github.com/mxppxm/english-tutor/internal/vocab"
)

// Request is the analysis entry point payload. Either Text (legacy whole-text
// mode) or Sentences (sentence mode) must be present. Provider credentials
// sent with the request override the configured defaults.
type Request struct {
	Text         string   `json:"text"`
	Sentences    []string `json:"sentences"`
	Provider     string   `json:"provider"`
	APIKey       string   `json:"apiKey"`
	ModelName    string   `json:"modelName"`
	VocabularyID string   `json:"vocabularyId"`
	BatchSize    int      `json:"batchSize"`
}

// Response is the final assembled analysis consumed by the study view.
type Response struct {
	Title        string                      `json:"title"`
	Overview     string                      `json:"overview"`
	Phrases      []recovery.Phrase           `json:"phrases"`
	Sentences    []recovery.SentenceAnalysis `json:"sentences"`
	Paragraphs   []json.RawMessage           `json:"paragraphs"`
	Vocabulary   *vocab.Analysis             `json:"vocabulary,omitempty"`
	OriginalText string                      `json:"originalText"`
	AnalysisMode string                      `json:"analysisMode"`
	Processed    bool                        `json:"processed"`
}

// Options are the resolved per-request settings the orchestrator runs with.
type Options struct {
	Provider     llm.Provider
	APIKey       string
	ModelName    string
	BatchSize    int
	VocabularyID string
}
