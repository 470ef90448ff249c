package textproc

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegmentBasicSplit(t *testing.T) {
	got := Segment("The sun rose over the hills. Birds began to sing. It was a new day.")
	want := []string{
		"The sun rose over the hills.",
		"Birds began to sing.",
		"It was a new day.",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestSegmentProtectsAbbreviations(t *testing.T) {
	got := Segment("Dr. Smith went home. He was tired!")
	want := []string{"Dr. Smith went home.", "He was tired!"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestSegmentKeepsTerminatorRuns(t *testing.T) {
	got := Segment("What a day!! Really?! Yes.")
	want := []string{"What a day!!", "Really?!", "Yes."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestSegmentNoSplitBeforeLowercase(t *testing.T) {
	// A terminator followed by a lowercase continuation is not a boundary.
	got := Segment("He earned 3.5 percent interest. Nice work.")
	want := []string{"He earned 3.5 percent interest.", "Nice work."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestSegmentAppendsMissingTerminator(t *testing.T) {
	got := Segment("This sentence never ends")
	want := []string{"This sentence never ends."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestSegmentFiltersNonLatinAndShortFragments(t *testing.T) {
	got := Segment("Ok. 你好世界. A very real sentence.")
	want := []string{"A very real sentence."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestSegmentCollapsesWhitespace(t *testing.T) {
	got := Segment("First   sentence\n\there.  Second one.")
	want := []string{"First sentence here.", "Second one."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment mismatch:\n got  %q\n want %q", got, want)
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		if got := Segment(in); len(got) != 0 {
			t.Fatalf("Segment(%q) = %q, want empty", in, got)
		}
	}
}

func TestSegmentEveryResultTerminates(t *testing.T) {
	texts := []string{
		"Mr. Jones met Mrs. Jones at 5 p.m. They talked",
		"One! Two? Three... Four",
		"The U.S. economy grew. The U.K. followed.",
	}
	for _, text := range texts {
		for _, s := range Segment(text) {
			if !strings.ContainsAny(s[len(s)-1:], ".!?") {
				t.Fatalf("sentence %q from %q lacks a terminator", s, text)
			}
		}
	}
}
