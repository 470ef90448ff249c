package recovery

import (
	"regexp"
	"strings"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// stripTrailingCommas removes commas that directly precede a closing bracket
// or brace, a frequent model mistake.
func stripTrailingCommas(s string) string {
	for {
		out := trailingCommaRe.ReplaceAllString(s, "$1")
		if out == s {
			return out
		}
		s = out
	}
}

// balanceBrackets appends the closers for every unmatched { and [ in opening
// order. It is not string-aware: braces inside quoted values skew it, which
// is accepted — the result still has to survive a parse.
func balanceBrackets(s string) string {
	var open []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '[':
			open = append(open, s[i])
		case '}':
			if len(open) > 0 && open[len(open)-1] == '{' {
				open = open[:len(open)-1]
			}
		case ']':
			if len(open) > 0 && open[len(open)-1] == '[' {
				open = open[:len(open)-1]
			}
		}
	}
	if len(open) == 0 {
		return s
	}
	var b strings.Builder
	b.WriteString(s)
	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// stripControlChars drops bytes below 0x20 except tab, newline and carriage
// return. These are hard parse failures when a model echoes raw control
// characters into string values.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 && c != '\t' && c != '\n' && c != '\r' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

var (
	bareValueRe = regexp.MustCompile(`:\s*([^"\s\d\-{\[][^,}\]]*)(\s*[,}\]])`)
	numberRe    = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)
)

// quoteBareValues wraps unquoted non-literal values after a colon in double
// quotes, covering both mid-object (value followed by comma) and final
// property (value followed by a closer) positions. Stray quotes inside the
// value are escaped.
func quoteBareValues(s string) string {
	return bareValueRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := bareValueRe.FindStringSubmatch(m)
		if sub == nil {
			return m
		}
		val := strings.TrimSpace(sub[1])
		if val == "true" || val == "false" || val == "null" || numberRe.MatchString(val) {
			return m
		}
		val = strings.ReplaceAll(val, `\`, `\\`)
		val = strings.ReplaceAll(val, `"`, `\"`)
		return `: "` + val + `"` + strings.TrimLeft(sub[2], " \t\r\n")
	})
}

// greedyObject extracts the first {...} span whose closing brace is followed
// by end of input, a fence marker, or a line break.
func greedyObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}
	for j := start; j < len(s); j++ {
		if s[j] != '}' {
			continue
		}
		if anchorFollows(s[j+1:]) {
			return s[start : j+1], true
		}
	}
	return "", false
}

func anchorFollows(rest string) bool {
	trimmed := strings.TrimLeft(rest, " \t\r\n")
	if trimmed == "" || strings.HasPrefix(trimmed, "```") {
		return true
	}
	k := 0
	for k < len(rest) && (rest[k] == ' ' || rest[k] == '\t') {
		k++
	}
	return k < len(rest) && (rest[k] == '\n' || rest[k] == '\r')
}
