package textproc

import (
	"regexp"
	"strings"
)

// Abbreviations whose trailing period must not end a sentence. The list is
// deliberately the one the study view was tuned against; extending it changes
// downstream batching and dedup positions.
var abbreviations = []string{
	"Mr", "Mrs", "Ms", "Dr", "Prof", "Sr", "Jr",
	"vs", "etc", "e.g", "i.e", "a.m", "p.m",
	"U.S", "U.K", "U.N", "E.U", "A.I",
	"St", "Ave", "Blvd", "Rd", "Ltd", "Inc", "Corp",
}

const abbrPlaceholder = "__ABBR__"

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	terminatorRe = regexp.MustCompile(`[.!?]+`)
	latinRe      = regexp.MustCompile(`[a-zA-Z]`)
	abbrRes      = buildAbbrPatterns()
)

type abbrPattern struct {
	re          *regexp.Regexp
	replacement string
}

func buildAbbrPatterns() []abbrPattern {
	out := make([]abbrPattern, 0, len(abbreviations))
	for _, abbr := range abbreviations {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(abbr) + `\.`)
		out = append(out, abbrPattern{re: re, replacement: abbr + abbrPlaceholder})
	}
	return out
}

// Segment splits raw text into sentences. It is a heuristic splitter, not a
// full sentence-boundary detector: a terminator run only ends a sentence when
// it is followed by whitespace and an uppercase letter, or by end of input.
// Known failure modes (decimals, ellipses, quoted dialogue) are worked around
// only via the abbreviation list.
func Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	clean := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")

	marked := clean
	for _, p := range abbrRes {
		marked = p.re.ReplaceAllString(marked, p.replacement)
	}

	chunks := splitOnTerminators(marked)

	sentences := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		s := strings.ReplaceAll(chunk, abbrPlaceholder, ".")
		s = strings.TrimSpace(s)
		core := strings.TrimRight(s, ".!?")
		if len(core) <= 2 || !latinRe.MatchString(core) {
			continue
		}
		if !strings.ContainsAny(s[len(s)-1:], ".!?") {
			s += "."
		}
		sentences = append(sentences, s)
	}
	return sentences
}

// splitOnTerminators cuts after each qualifying [.!?]+ run, keeping the run
// attached to its sentence.
func splitOnTerminators(s string) []string {
	var chunks []string
	start := 0
	for _, loc := range terminatorRe.FindAllStringIndex(s, -1) {
		end := loc[1]
		if !boundaryFollows(s, end) {
			continue
		}
		chunks = append(chunks, s[start:end])
		start = end
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

// boundaryFollows reports whether position i sits at end of input or before
// whitespace followed by an uppercase letter.
func boundaryFollows(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
		j++
	}
	if j == i {
		return false
	}
	return j < len(s) && s[j] >= 'A' && s[j] <= 'Z'
}
