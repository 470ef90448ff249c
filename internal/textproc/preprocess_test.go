package textproc

import (
	"reflect"
	"testing"
)

func TestPreprocessCapsAfterDedup(t *testing.T) {
	// Four raw sentences, three unique. With a cap of 2 only the unique list
	// is truncated.
	text := "First one here. Second one here. First one here. Third one here."
	got := Preprocess(text, 2)

	if got.OriginalSentenceCount != 4 {
		t.Fatalf("original sentence count = %d, want 4", got.OriginalSentenceCount)
	}
	if !got.IsLimited {
		t.Fatal("expected IsLimited")
	}
	if !reflect.DeepEqual(got.Sentences, []string{"First one here.", "Second one here."}) {
		t.Fatalf("sentences = %q", got.Sentences)
	}
	if got.SentenceCount != 2 || got.MaxSentences != 2 {
		t.Fatalf("counts = %d/%d", got.SentenceCount, got.MaxSentences)
	}
	if !got.Deduplication.HasDeduplication {
		t.Fatal("expected HasDeduplication")
	}
	if got.ProcessedText != "First one here. Second one here." {
		t.Fatalf("processed text = %q", got.ProcessedText)
	}
}

func TestPreprocessUnlimitedWhenCapNonPositive(t *testing.T) {
	text := "Alpha runs fast. Beta runs faster. Gamma wins."
	got := Preprocess(text, 0)

	if got.IsLimited {
		t.Fatal("cap of 0 must not limit")
	}
	if got.SentenceCount != 3 {
		t.Fatalf("sentence count = %d, want 3", got.SentenceCount)
	}
	if got.MaxSentences != 3 {
		t.Fatalf("MaxSentences = %d, want unique count", got.MaxSentences)
	}
}

func TestPreprocessNoDuplicates(t *testing.T) {
	got := Preprocess("Only one sentence lives here.", 10)
	if got.Deduplication.HasDeduplication {
		t.Fatal("no duplicates expected")
	}
	if got.IsLimited {
		t.Fatal("under the cap, must not be limited")
	}
	if got.OriginalText != "Only one sentence lives here." {
		t.Fatalf("original text = %q", got.OriginalText)
	}
}

func TestPreprocessEmptyText(t *testing.T) {
	got := Preprocess("", 10)
	if got.SentenceCount != 0 || got.OriginalSentenceCount != 0 {
		t.Fatalf("empty input produced %d/%d sentences", got.SentenceCount, got.OriginalSentenceCount)
	}
	if got.ProcessedText != "" {
		t.Fatalf("processed text = %q", got.ProcessedText)
	}
}
