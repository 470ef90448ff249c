package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tutor-test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGetHistory(t *testing.T) {
	s := newTestStore(t)

	result := json.RawMessage(`{"title":"Test","sentences":[]}`)
	id, err := s.SaveHistory("Test", "The quick brown fox jumps over the lazy dog.", result)
	if err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	rec, err := s.GetHistory(id)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if rec.Title != "Test" {
		t.Fatalf("title = %q", rec.Title)
	}
	if rec.WordCount != 9 {
		t.Fatalf("word count = %d, want 9", rec.WordCount)
	}
	if rec.Preview != "The quick brown fox jumps over the lazy dog." {
		t.Fatalf("preview = %q", rec.Preview)
	}
	if string(rec.AnalysisResult) != string(result) {
		t.Fatalf("analysis result = %s", rec.AnalysisResult)
	}
}

func TestSaveHistoryDefaultsTitleAndTruncatesPreview(t *testing.T) {
	s := newTestStore(t)

	long := ""
	for i := 0; i < 30; i++ {
		long += "word "
	}
	id, err := s.SaveHistory("", long, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}
	rec, err := s.GetHistory(id)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if rec.Title != "英文精讲" {
		t.Fatalf("default title = %q", rec.Title)
	}
	if len([]rune(rec.Preview)) != 103 {
		t.Fatalf("preview length = %d, want 100 runes plus ellipsis", len([]rune(rec.Preview)))
	}
}

func TestListHistoryNewestFirst(t *testing.T) {
	s := newTestStore(t)

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.SaveHistory(title, "text", json.RawMessage(`{}`)); err != nil {
			t.Fatalf("SaveHistory failed: %v", err)
		}
	}

	records, err := s.ListHistory(2, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Title != "third" || records[1].Title != "second" {
		t.Fatalf("order = %q, %q", records[0].Title, records[1].Title)
	}

	page2, err := s.ListHistory(2, 2)
	if err != nil {
		t.Fatalf("ListHistory page 2 failed: %v", err)
	}
	if len(page2) != 1 || page2[0].Title != "first" {
		t.Fatalf("page 2 = %+v", page2)
	}
}

func TestDeleteAndClearHistory(t *testing.T) {
	s := newTestStore(t)

	id, _ := s.SaveHistory("a", "text", json.RawMessage(`{}`))
	_, _ = s.SaveHistory("b", "text", json.RawMessage(`{}`))

	if err := s.DeleteHistory(id); err != nil {
		t.Fatalf("DeleteHistory failed: %v", err)
	}
	if _, err := s.GetHistory(id); err == nil {
		t.Fatal("deleted record still readable")
	}

	if err := s.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	records, err := s.ListHistory(10, 0)
	if err != nil {
		t.Fatalf("ListHistory failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("history not cleared: %d records", len(records))
	}
}

func TestPurgeHistoryBefore(t *testing.T) {
	s := newTestStore(t)

	old := time.Now().UTC().Add(-48 * time.Hour)
	if _, err := s.db.Exec(
		`INSERT INTO analysis_history (timestamp, title, original_text, analysis_result) VALUES (?, 'old', '', '{}')`,
		old); err != nil {
		t.Fatalf("insert old record: %v", err)
	}
	if _, err := s.SaveHistory("fresh", "text", json.RawMessage(`{}`)); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	n, err := s.PurgeHistoryBefore(time.Now().UTC().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PurgeHistoryBefore failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("purged %d records, want 1", n)
	}
	records, _ := s.ListHistory(10, 0)
	if len(records) != 1 || records[0].Title != "fresh" {
		t.Fatalf("remaining = %+v", records)
	}
}

func TestWordCollectionCRUD(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddWord(CollectedWord{
		Word:           "serendipity",
		Translation:    "意外发现",
		Context:        "a moment of serendipity",
		SourceSentence: "It was pure serendipity.",
	})
	if err != nil {
		t.Fatalf("AddWord failed: %v", err)
	}

	words, err := s.ListWords()
	if err != nil {
		t.Fatalf("ListWords failed: %v", err)
	}
	if len(words) != 1 || words[0].Word != "serendipity" {
		t.Fatalf("words = %+v", words)
	}
	if words[0].CreatedAt.IsZero() {
		t.Fatal("created_at not populated")
	}

	if err := s.DeleteWord(id); err != nil {
		t.Fatalf("DeleteWord failed: %v", err)
	}
	words, _ = s.ListWords()
	if len(words) != 0 {
		t.Fatalf("word not deleted: %+v", words)
	}
}

func TestMasteredWordsNormalizeAndDeduplicate(t *testing.T) {
	s := newTestStore(t)

	for _, w := range []string{"Apple", "  apple ", "banana"} {
		if err := s.MasterWord(w); err != nil {
			t.Fatalf("MasterWord(%q) failed: %v", w, err)
		}
	}

	words, err := s.ListMastered()
	if err != nil {
		t.Fatalf("ListMastered failed: %v", err)
	}
	if len(words) != 2 || words[0] != "apple" || words[1] != "banana" {
		t.Fatalf("mastered = %v", words)
	}

	if err := s.UnmasterWord("APPLE"); err != nil {
		t.Fatalf("UnmasterWord failed: %v", err)
	}
	words, _ = s.ListMastered()
	if len(words) != 1 || words[0] != "banana" {
		t.Fatalf("after unmaster = %v", words)
	}
}
