package textproc

import "strings"

// Deduplication is the dedup section of a preprocessing report.
type Deduplication struct {
	DedupResult
	HasDeduplication bool `json:"hasDeduplication"`
}

// PreprocessResult carries the sentence list handed to analysis plus the
// before/after statistics the UI uses for truncation warnings.
type PreprocessResult struct {
	OriginalText          string        `json:"originalText"`
	ProcessedText         string        `json:"processedText"`
	Sentences             []string      `json:"sentences"`
	SentenceCount         int           `json:"sentenceCount"`
	OriginalSentenceCount int           `json:"originalSentenceCount"`
	IsLimited             bool          `json:"isLimited"`
	MaxSentences          int           `json:"maxSentences"`
	Deduplication         Deduplication `json:"deduplication"`
}

// Preprocess segments text, removes duplicate sentences, and caps the unique
// sentence count. The cap applies after deduplication so it limits unique
// content, not raw input. maxSentences <= 0 means unlimited.
func Preprocess(text string, maxSentences int) PreprocessResult {
	sentences := Segment(text)
	dedup := Deduplicate(sentences)

	limited := dedup.UniqueSentences
	isLimited := false
	if maxSentences > 0 {
		isLimited = len(dedup.UniqueSentences) > maxSentences
		if isLimited {
			limited = dedup.UniqueSentences[:maxSentences]
		}
	}

	// Rejoined text is kept for legacy whole-text consumers.
	terminated := make([]string, len(limited))
	for i, s := range limited {
		s = strings.TrimSpace(s)
		if s != "" && !strings.ContainsAny(s[len(s)-1:], ".!?") {
			s += "."
		}
		terminated[i] = s
	}

	max := maxSentences
	if max <= 0 {
		max = len(dedup.UniqueSentences)
	}

	return PreprocessResult{
		OriginalText:          text,
		ProcessedText:         strings.Join(terminated, " "),
		Sentences:             limited,
		SentenceCount:         len(limited),
		OriginalSentenceCount: len(sentences),
		IsLimited:             isLimited,
		MaxSentences:          max,
		Deduplication: Deduplication{
			DedupResult:      dedup,
			HasDeduplication: dedup.DuplicateCount > 0,
		},
	}
}
