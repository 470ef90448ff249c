// Package vocab loads word lists and scans analyzed text for entries from
// the learner's selected list. Matching is bounded local work over
// caller-supplied data; a missing or broken list degrades to no vocabulary
// section instead of failing the analysis.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mxppxm/english-tutor/internal/logger"
)

// Word is one entry of a vocabulary list file.
type Word struct {
	Word        string `json:"word"`
	Phonetic    string `json:"phonetic,omitempty"`
	Translation string `json:"translation,omitempty"`
}

// FoundWord is a list entry located in the analyzed text, with a snippet of
// surrounding context.
type FoundWord struct {
	Word
	Context string `json:"context,omitempty"`
}

// Analysis summarizes list coverage for one analyzed text.
type Analysis struct {
	VocabularyID   string      `json:"vocabularyId"`
	VocabularyName string      `json:"vocabularyName"`
	TotalWords     int         `json:"totalWords"`
	FoundWords     []FoundWord `json:"foundWords"`
	FoundCount     int         `json:"foundCount"`
	Coverage       int         `json:"coverage"`
}

var listNames = map[string]string{
	"cet4":   "大学英语四级词库",
	"cet6":   "大学英语六级词库",
	"kaoyan": "考研英语词库",
	"toefl":  "托福词库",
	"ielts":  "雅思词库",
}

// Library loads vocabulary list files from a directory, once each.
type Library struct {
	dir   string
	log   *logger.Logger
	mu    sync.RWMutex
	cache map[string][]Word
}

func NewLibrary(dir string) *Library {
	return &Library{
		dir:   dir,
		log:   logger.New("Vocab"),
		cache: make(map[string][]Word),
	}
}

// Known reports whether id names a supported vocabulary list.
func Known(id string) bool {
	_, ok := listNames[id]
	return ok
}

func (l *Library) Load(id string) ([]Word, error) {
	l.mu.RLock()
	words, ok := l.cache[id]
	l.mu.RUnlock()
	if ok {
		return words, nil
	}

	if !Known(id) {
		return nil, fmt.Errorf("unknown vocabulary list: %s", id)
	}
	data, err := os.ReadFile(filepath.Join(l.dir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary %s: %w", id, err)
	}
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", id, err)
	}

	l.mu.Lock()
	l.cache[id] = words
	l.mu.Unlock()
	l.log.LogInfof("loaded vocabulary %s (%d words)", id, len(words))
	return words, nil
}

// Analyze scans text for entries of the given list and reports coverage.
func (l *Library) Analyze(id, text string) (*Analysis, error) {
	words, err := l.Load(id)
	if err != nil {
		return nil, err
	}
	found := Match(text, words)
	coverage := 0
	if len(words) > 0 {
		coverage = len(found) * 100 / len(words)
	}
	return &Analysis{
		VocabularyID:   id,
		VocabularyName: listNames[id],
		TotalWords:     len(words),
		FoundWords:     found,
		FoundCount:     len(found),
		Coverage:       coverage,
	}, nil
}

// Match finds list entries in text, longest entry first so that a phrase like
// "give up" claims its span before "up" can. Matches are whole-word and
// case-insensitive; each claimed span is reported at most once.
func Match(text string, words []Word) []FoundWord {
	if strings.TrimSpace(text) == "" || len(words) == 0 {
		return []FoundWord{}
	}

	lower := strings.ToLower(text)
	ordered := make([]Word, len(words))
	copy(ordered, words)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].Word) > len(ordered[j].Word)
	})

	claimed := make([]bool, len(lower))
	found := make([]FoundWord, 0)

	for _, w := range ordered {
		needle := strings.ToLower(strings.TrimSpace(w.Word))
		if needle == "" {
			continue
		}
		idx := findWholeWord(lower, needle, claimed)
		if idx < 0 {
			continue
		}
		for i := idx; i < idx+len(needle); i++ {
			claimed[i] = true
		}
		found = append(found, FoundWord{Word: w, Context: contextAround(text, idx, len(needle))})
	}
	return found
}

func findWholeWord(lower, needle string, claimed []bool) int {
	from := 0
	for {
		i := strings.Index(lower[from:], needle)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(needle)
		if wordBoundary(lower, i-1) && wordBoundary(lower, end) && !spanClaimed(claimed, i, end) {
			return i
		}
		from = i + 1
	}
}

func wordBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '\'')
}

func spanClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

// contextAround returns a short window of the original text around a match.
func contextAround(text string, idx, length int) string {
	const pad = 40
	start := idx - pad
	if start < 0 {
		start = 0
	}
	end := idx + length + pad
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
