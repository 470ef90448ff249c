package recovery

import (
	"strings"
	"testing"
)

func TestRecoverDirectJSON(t *testing.T) {
	raw := `{"title":"精讲","overview":"概览","sentences":[{"id":"s1","original":"Hello.","translation":"你好。"}]}`
	got := Recover(raw)
	if got.Degraded {
		t.Fatal("clean JSON must not degrade")
	}
	if got.Title != "精讲" || len(got.Sentences) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Sentences[0].Original != "Hello." {
		t.Fatalf("sentence = %+v", got.Sentences[0])
	}
}

func TestRecoverJSONFence(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"title\":\"Fenced\",\"sentences\":[]}\n```\nHope it helps!"
	got := Recover(raw)
	if got.Degraded || got.Title != "Fenced" {
		t.Fatalf("fence extraction failed: %+v", got)
	}
}

func TestRecoverGenericFence(t *testing.T) {
	raw := "```\n{\"title\":\"Untagged\"}\n```"
	got := Recover(raw)
	if got.Degraded || got.Title != "Untagged" {
		t.Fatalf("generic fence failed: %+v", got)
	}
}

func TestRecoverProseWrappedObject(t *testing.T) {
	raw := `抱歉，直接给出结果：{"title":"Wrapped","sentences":[{"id":"s1","original":"A cat."}]}`
	got := Recover(raw)
	if got.Degraded || got.Title != "Wrapped" {
		t.Fatalf("prose-wrapped extraction failed: %+v", got)
	}
}

func TestRecoverTruncatedJSON(t *testing.T) {
	// Cut mid-array: bracket repair must close ] then }.
	raw := `{"title":"Cut short","sentences":[{"id":"s1","original":"First."},{"id":"s2","original":"Second."}`
	got := Recover(raw)
	if got.Degraded {
		t.Fatal("truncated JSON should be repaired, not degraded")
	}
	if got.Title != "Cut short" || len(got.Sentences) != 2 {
		t.Fatalf("repair result: %+v", got)
	}
}

func TestRecoverTrailingCommas(t *testing.T) {
	raw := `{"title":"Commas","sentences":[{"id":"s1","original":"One.",},],}`
	got := Recover(raw)
	if got.Degraded || got.Title != "Commas" || len(got.Sentences) != 1 {
		t.Fatalf("trailing comma repair failed: %+v", got)
	}
}

func TestRecoverControlCharacters(t *testing.T) {
	raw := "{\"title\":\"Ctrl\x01\x02\",\"sentences\":[]}"
	got := Recover(raw)
	if got.Degraded {
		t.Fatalf("control characters should be stripped: %+v", got)
	}
	if !strings.HasPrefix(got.Title, "Ctrl") {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestRecoverBareValues(t *testing.T) {
	raw := `{"title": Unquoted title here, "overview": another bare value}`
	got := Recover(raw)
	if got.Degraded {
		t.Fatalf("bare values should be quoted: %+v", got)
	}
	if got.Title != "Unquoted title here" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestRecoverSentencesRescue(t *testing.T) {
	// Broken head, salvageable sentences array.
	raw := `{"title": !!!garbage!!!, "sentences": [{"id":"s1","original":"Saved."}]`
	got := Recover(raw)
	if got.Degraded {
		t.Fatalf("sentences rescue failed: %+v", got)
	}
	if len(got.Sentences) != 1 || got.Sentences[0].Original != "Saved." {
		t.Fatalf("rescued sentences = %+v", got.Sentences)
	}
}

func TestRecoverToleratesFieldTypeDrift(t *testing.T) {
	// keyPoints is specified as a string but models routinely emit it as an
	// array; the rest of the object must survive.
	raw := `{"title":"t","sentences":[{"id":"s1","original":"Hi.","translation":"你好","keyPoints":["a","b"]},{"id":"s2","original":"Bye.","translation":"再见"}]}`
	got := Recover(raw)
	if got.Degraded {
		t.Fatalf("type drift must not degrade: %+v", got)
	}
	if got.Title != "t" {
		t.Fatalf("title = %q", got.Title)
	}
	if len(got.Sentences) != 2 {
		t.Fatalf("sentences = %+v", got.Sentences)
	}
	if got.Sentences[0].Translation != "你好" || got.Sentences[1].Translation != "再见" {
		t.Fatalf("translations lost: %+v", got.Sentences)
	}

	// Same for a non-string title; the shape check still sees a title key.
	got = Recover(`{"title":42,"sentences":[{"id":"s1","original":"Hi."}]}`)
	if got.Degraded || len(got.Sentences) != 1 {
		t.Fatalf("numeric title must not degrade: %+v", got)
	}
}

func TestRecoverNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"complete nonsense with no braces at all",
		"抱歉，我无法完成这个任务。",
		"{{{{[[[",
		`{"unrelated": true}`,
	}
	for _, raw := range inputs {
		got := Recover(raw)
		if !got.Degraded {
			t.Fatalf("expected degraded stub for %q, got %+v", raw, got)
		}
		if got.Title != "解析失败" {
			t.Fatalf("stub title = %q", got.Title)
		}
		if len(got.Sentences) != 1 || got.Sentences[0].ID != "error_1" {
			t.Fatalf("stub sentences = %+v", got.Sentences)
		}
	}
}

func TestLooksNoncompliant(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`{"title":"ok"}`, false},
		{`  {"title":"ok"}  `, false},
		{"```json\n{}\n```", true},
		{`好的，以下是分析：{"title":"x"}`, true},
		{`Here is your JSON: {"title":"x"}`, true},
		{"", true},
		{"plain prose", true},
	}
	for _, c := range cases {
		if got := LooksNoncompliant(c.raw); got != c.want {
			t.Fatalf("LooksNoncompliant(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestBalanceBracketsClosesInOpeningOrder(t *testing.T) {
	got := balanceBrackets(`{"a":[1,2`)
	if got != `{"a":[1,2]}` {
		t.Fatalf("balanceBrackets = %q", got)
	}
}

func TestStripTrailingCommasRepeats(t *testing.T) {
	got := stripTrailingCommas(`{"a":[1,,],}`)
	if strings.Contains(got, ",]") || strings.Contains(got, ",}") {
		t.Fatalf("commas remain: %q", got)
	}
}

func TestQuoteBareValuesSkipsLiterals(t *testing.T) {
	in := `{"a": true, "b": null, "c": -1.5, "d": bare text}`
	got := quoteBareValues(in)
	for _, keep := range []string{`"a": true`, `"b": null`, `"c": -1.5`} {
		if !strings.Contains(got, keep) {
			t.Fatalf("literal was quoted: %q", got)
		}
	}
	if !strings.Contains(got, `"d": "bare text"`) {
		t.Fatalf("bare value not quoted: %q", got)
	}
}
