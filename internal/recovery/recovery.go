// Package recovery turns raw model output that is supposed to be JSON into a
// structurally valid analysis result. The model is instructed to reply with
// pure JSON but in practice returns prose, fenced blocks, stray commentary,
// or malformed/truncated JSON; an ordered cascade of extraction and repair
// strategies commits to the first one that parses and passes a minimal shape
// check, and a degraded stub is returned when every strategy fails.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mxppxm/english-tutor/internal/logger"
)

var log = logger.New("Recovery")

var (
	jsonFenceRe = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)```")
	sentencesRe = regexp.MustCompile(`"sentences"\s*:\s*\[`)
)

// proseLeadIns are reply openers that signal the model wrapped its JSON in
// commentary despite the pure-JSON instruction.
var proseLeadIns = []string{
	"抱歉", "好的", "以下是", "这是", "根据",
	"Here is", "Here's", "Sure", "Certainly", "Of course",
}

// LooksNoncompliant reports whether a reply visibly violates the pure-JSON
// instruction. The orchestrator uses this to decide on its single strict
// retry; Recover uses it to pick its pre-extraction path.
func LooksNoncompliant(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" || !strings.HasPrefix(s, "{") {
		return true
	}
	if strings.Contains(s, "```") {
		return true
	}
	for _, lead := range proseLeadIns {
		if strings.HasPrefix(s, lead) {
			return true
		}
	}
	return false
}

type strategy struct {
	name string
	fn   func(string) (Result, error)
}

// Strategies are ordered from fidelity-preserving to increasingly lossy;
// each is attempted only after the previous ones failed.
var strategies = []strategy{
	{"direct", parseDirect},
	{"json-fence", parseJSONFence},
	{"generic-fence", parseGenericFence},
	{"greedy-object", parseGreedyObject},
	{"bracket-repair", parseBracketRepaired},
	{"control-strip", parseControlStripped},
	{"quote-bare-values", parseQuotedBareValues},
	{"sentences-rescue", parseSentencesRescue},
}

// Recover never fails: it returns the first strategy's result, or the
// degraded fallback stub when the whole cascade comes up empty.
func Recover(raw string) Result {
	trimmed := strings.TrimSpace(raw)

	candidates := []string{trimmed}
	if pre := preExtract(trimmed); pre != trimmed {
		candidates = []string{pre, trimmed}
	}

	for _, candidate := range candidates {
		for _, st := range strategies {
			res, err := st.fn(candidate)
			if err != nil {
				continue
			}
			log.LogDebugf("recovered via %s strategy (%d bytes)", st.name, len(raw))
			return res
		}
	}

	log.LogWarnf("all strategies failed, returning fallback stub (%d bytes)", len(raw))
	return fallbackStub(raw)
}

// preExtract narrows an obviously noncompliant reply down to its JSON span
// before the cascade runs. It only shortcuts the slower repair strategies;
// the cascade still sees the original text if the narrowed span fails.
func preExtract(s string) string {
	if !LooksNoncompliant(s) {
		return s
	}
	if g, ok := greedyObject(s); ok {
		return g
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			return s[i : j+1]
		}
	}
	return s
}

var errShape = errors.New("missing title/paragraphs/sentences")

// parseCandidate parses s and enforces the minimal shape requirement: a
// non-empty title, or a paragraphs array, or a sentences array.
func parseCandidate(s string) (Result, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Result{}, errors.New("empty candidate")
	}
	var res Result
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		// The model sometimes drifts from the schema's field types
		// (keyPoints or breakdown as an array, title as a number). A type
		// mismatch leaves the rest of the object decoded, so only syntax
		// errors are fatal; the shape check decides the rest.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return Result{}, err
		}
	}
	if !hasRequiredShape(s) {
		return Result{}, errShape
	}
	return res, nil
}

func hasRequiredShape(s string) bool {
	if gjson.Get(s, "title").String() != "" {
		return true
	}
	if p := gjson.Get(s, "paragraphs"); p.Exists() && p.Type != gjson.Null {
		return true
	}
	if sn := gjson.Get(s, "sentences"); sn.Exists() && sn.Type != gjson.Null {
		return true
	}
	return false
}

func parseDirect(s string) (Result, error) {
	return parseCandidate(s)
}

func parseJSONFence(s string) (Result, error) {
	m := jsonFenceRe.FindStringSubmatch(s)
	if m == nil {
		return Result{}, errors.New("no json fence")
	}
	return parseCandidate(m[1])
}

// parseGenericFence accepts an untagged fenced block only when its content
// starts an object and mentions a title key, so random fenced prose or code
// is not mistaken for the payload.
func parseGenericFence(s string) (Result, error) {
	m := anyFenceRe.FindStringSubmatch(s)
	if m == nil {
		return Result{}, errors.New("no fenced block")
	}
	content := strings.TrimSpace(m[1])
	if !strings.HasPrefix(content, "{") || !strings.Contains(content, `"title"`) {
		return Result{}, errors.New("fenced block is not an analysis object")
	}
	return parseCandidate(content)
}

func parseGreedyObject(s string) (Result, error) {
	obj, ok := greedyObject(s)
	if !ok {
		return Result{}, errors.New("no object span")
	}
	return parseCandidate(obj)
}

func parseBracketRepaired(s string) (Result, error) {
	return parseCandidate(stripTrailingCommas(balanceBrackets(s)))
}

func parseControlStripped(s string) (Result, error) {
	return parseBracketRepaired(stripControlChars(s))
}

func parseQuotedBareValues(s string) (Result, error) {
	return parseCandidate(stripTrailingCommas(quoteBareValues(s)))
}

// parseSentencesRescue salvages a "sentences": [...] fragment out of an
// otherwise unrecoverable object, preferring partial data over the stub.
func parseSentencesRescue(s string) (Result, error) {
	loc := sentencesRe.FindStringIndex(s)
	if loc == nil {
		return Result{}, errors.New("no sentences fragment")
	}
	frag := s[loc[1]-1:]
	frag = stripTrailingCommas(balanceBrackets(stripControlChars(frag)))
	return parseCandidate(`{"sentences": ` + frag + `}`)
}

// fallbackStub is the last rung of the ladder: a well-formed degraded result
// that lets the orchestrator keep merging instead of aborting.
func fallbackStub(raw string) Result {
	return Result{
		Degraded: true,
		Title:    "解析失败",
		Overview: fmt.Sprintf("AI返回内容无法解析为结构化结果（原始长度 %d 字符），请重试或适当缩短文本", len(raw)),
		Sentences: []SentenceAnalysis{
			{
				ID:            "error_1",
				Original:      "分析内容解析失败",
				Translation:   "抱歉，本次返回的分析结果格式异常",
				Structure:     "解析失败",
				Phrases:       []Phrase{},
				GrammarPoints: []GrammarPoint{},
			},
		},
	}
}
