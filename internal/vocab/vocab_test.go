package vocab

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestLibrary(t *testing.T, id string, words []Word) *Library {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(words)
	if err != nil {
		t.Fatalf("marshal words: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}
	return NewLibrary(dir)
}

func TestMatchWholeWordOnly(t *testing.T) {
	words := []Word{{Word: "cat", Translation: "猫"}}
	found := Match("The cat sat on a catalog.", words)
	if len(found) != 1 {
		t.Fatalf("found %d matches, want 1", len(found))
	}
	if found[0].Word.Word != "cat" {
		t.Fatalf("match = %+v", found[0])
	}
}

func TestMatchLongestFirst(t *testing.T) {
	words := []Word{
		{Word: "up"},
		{Word: "give up"},
	}
	found := Match("Never give up on it.", words)
	if len(found) != 1 {
		t.Fatalf("found %d matches, want the phrase only: %+v", len(found), found)
	}
	if found[0].Word.Word != "give up" {
		t.Fatalf("match = %q", found[0].Word.Word)
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	found := Match("REMARKABLE progress.", []Word{{Word: "remarkable"}})
	if len(found) != 1 {
		t.Fatalf("found %d matches, want 1", len(found))
	}
	if found[0].Context == "" {
		t.Fatal("context should not be empty")
	}
}

func TestMatchApostropheIsNotBoundary(t *testing.T) {
	found := Match("It's a test.", []Word{{Word: "it"}})
	if len(found) != 0 {
		t.Fatalf("'it' inside \"It's\" must not match: %+v", found)
	}
}

func TestMatchEmptyInputs(t *testing.T) {
	if got := Match("", []Word{{Word: "x"}}); len(got) != 0 {
		t.Fatalf("empty text matched: %+v", got)
	}
	if got := Match("some text", nil); len(got) != 0 {
		t.Fatalf("nil list matched: %+v", got)
	}
}

func TestAnalyzeCoverage(t *testing.T) {
	lib := newTestLibrary(t, "cet4", []Word{
		{Word: "journey", Translation: "旅程"},
		{Word: "harbor"},
		{Word: "atlas"},
		{Word: "quota"},
	})

	got, err := lib.Analyze("cet4", "The journey to the harbor was long.")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.VocabularyID != "cet4" || got.VocabularyName != "大学英语四级词库" {
		t.Fatalf("identity = %q/%q", got.VocabularyID, got.VocabularyName)
	}
	if got.TotalWords != 4 || got.FoundCount != 2 {
		t.Fatalf("counts = %d/%d", got.TotalWords, got.FoundCount)
	}
	if got.Coverage != 50 {
		t.Fatalf("coverage = %d", got.Coverage)
	}
}

func TestAnalyzeUnknownList(t *testing.T) {
	lib := NewLibrary(t.TempDir())
	if _, err := lib.Analyze("klingon", "text"); err == nil {
		t.Fatal("unknown list must error")
	}
}

func TestLoadCachesList(t *testing.T) {
	lib := newTestLibrary(t, "ielts", []Word{{Word: "alpha"}})
	if _, err := lib.Load("ielts"); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	// Remove the file; the cached copy must keep serving.
	if err := os.Remove(filepath.Join(lib.dir, "ielts.json")); err != nil {
		t.Fatalf("remove list: %v", err)
	}
	words, err := lib.Load("ielts")
	if err != nil {
		t.Fatalf("cached load failed: %v", err)
	}
	if len(words) != 1 || words[0].Word != "alpha" {
		t.Fatalf("cached words = %+v", words)
	}
}
