package textproc

import "strings"

// Duplicate describes one repeated sentence, reported with its original-case
// text and every position it occupied in the input.
type Duplicate struct {
	Sentence   string `json:"sentence"`
	Normalized string `json:"normalizedSentence"`
	Positions  []int  `json:"positions"`
	Count      int    `json:"count"`
}

// DedupResult maps every original sentence position onto the unique list.
type DedupResult struct {
	UniqueSentences     []string    `json:"uniqueSentences"`
	OriginalToUniqueMap []int       `json:"originalToUniqueMap"`
	Duplicates          []Duplicate `json:"duplicates"`
	OriginalCount       int         `json:"originalCount"`
	UniqueCount         int         `json:"uniqueCount"`
	DuplicateCount      int         `json:"duplicateCount"`
}

// Deduplicate removes repeated sentences in a single stable pass. Sentences
// compare equal after trim+lowercase; the first occurrence keeps its original
// casing and position in the unique list.
func Deduplicate(sentences []string) DedupResult {
	uniqueSentences := make([]string, 0, len(sentences))
	originalToUnique := make([]int, len(sentences))
	firstSeen := make(map[string]int, len(sentences))
	firstPos := make(map[string]int, len(sentences))
	positions := make(map[string][]int)
	var dupOrder []string

	for i, sentence := range sentences {
		normalized := strings.ToLower(strings.TrimSpace(sentence))
		if firstIndex, ok := firstSeen[normalized]; ok {
			originalToUnique[i] = firstIndex
			if _, seen := positions[normalized]; !seen {
				positions[normalized] = []int{firstPos[normalized]}
				dupOrder = append(dupOrder, normalized)
			}
			positions[normalized] = append(positions[normalized], i)
			continue
		}
		firstSeen[normalized] = len(uniqueSentences)
		firstPos[normalized] = i
		originalToUnique[i] = len(uniqueSentences)
		uniqueSentences = append(uniqueSentences, sentence)
	}

	duplicates := make([]Duplicate, 0, len(dupOrder))
	for _, normalized := range dupOrder {
		pos := positions[normalized]
		duplicates = append(duplicates, Duplicate{
			Sentence:   sentences[pos[0]],
			Normalized: normalized,
			Positions:  pos,
			Count:      len(pos),
		})
	}

	return DedupResult{
		UniqueSentences:     uniqueSentences,
		OriginalToUniqueMap: originalToUnique,
		Duplicates:          duplicates,
		OriginalCount:       len(sentences),
		UniqueCount:         len(uniqueSentences),
		DuplicateCount:      len(sentences) - len(uniqueSentences),
	}
}
