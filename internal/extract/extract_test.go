package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractFencedBlock(t *testing.T) {
	input := "```yaml\n- word: cat\n  back: an animal\n  tags: noun\n```"

	cards, report, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Word != "cat" || cards[0].Back != "an animal" || cards[0].Tags != "noun" {
		t.Errorf("unexpected card: %+v", cards[0])
	}
	if report.Kept != 1 {
		t.Errorf("expected Kept=1, got %d", report.Kept)
	}
}

func TestExtractEmbeddedProse(t *testing.T) {
	input := "Here is the list:\n- word: dog\n  back: a pet\n  tags: noun\nHope that helps!"

	cards, _, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Word != "dog" || cards[0].Back != "a pet" || cards[0].Tags != "noun" {
		t.Errorf("unexpected card: %+v", cards[0])
	}
}

func TestExtractDedupCaseInsensitiveFirstWins(t *testing.T) {
	input := "- word: Run\n  back: A\n- word: run\n  back: B"

	cards, report, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Word != "Run" || cards[0].Back != "A" {
		t.Errorf("expected first occurrence to win, got %+v", cards[0])
	}
	if report.SkippedDuplicate != 1 {
		t.Errorf("expected SkippedDuplicate=1, got %d", report.SkippedDuplicate)
	}
}

func TestExtractCapitalizationRule(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase stays lowercase", "- word: apple", "apple"},
		{"mixed case is lowered", "- word: aPPle", "apple"},
		{"proper name is preserved", "- word: Paris", "Paris"},
		{"all caps is preserved", "- word: NASA", "NASA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, _, err := Extract(tt.in)
			if err != nil {
				t.Fatalf("Extract returned error: %v", err)
			}
			if len(cards) != 1 {
				t.Fatalf("expected 1 card, got %d", len(cards))
			}
			if cards[0].Word != tt.want {
				t.Errorf("got word %q, want %q", cards[0].Word, tt.want)
			}
		})
	}
}

func TestExtractNoEntriesFails(t *testing.T) {
	_, _, err := Extract("I cannot see the image clearly.")
	if err == nil {
		t.Fatal("expected error for text without entries")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrNoEntryList) {
		t.Errorf("expected ErrNoEntryList, got %v", err)
	}
	if parseErr.Snippet == "" {
		t.Error("expected a diagnostic snippet in the error")
	}
}

func TestExtractSingleMappingWrapped(t *testing.T) {
	cards, _, err := Extract("word: cat\nback: an animal\ntags: noun")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(cards) != 1 || cards[0].Word != "cat" {
		t.Fatalf("expected single wrapped entry, got %+v", cards)
	}
}

func TestExtractSkipsNonMappingItems(t *testing.T) {
	input := "- word: cat\n  back: an animal\n- just a stray string"

	cards, report, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if report.SkippedInvalid != 1 {
		t.Errorf("expected SkippedInvalid=1, got %d", report.SkippedInvalid)
	}
}

func TestExtractSkipsEmptyWord(t *testing.T) {
	input := "- word: \"\"\n  back: orphaned definition\n- word: cat\n  back: an animal"

	cards, report, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(cards) != 1 || cards[0].Word != "cat" {
		t.Fatalf("expected only the valid entry, got %+v", cards)
	}
	if report.SkippedInvalid != 1 {
		t.Errorf("expected SkippedInvalid=1, got %d", report.SkippedInvalid)
	}
}

func TestExtractTagsSequenceJoined(t *testing.T) {
	input := "- word: run\n  back: to move fast\n  tags:\n    - noun\n    - verb"

	cards, _, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Tags != "noun, verb" {
		t.Errorf("got tags %q, want %q", cards[0].Tags, "noun, verb")
	}
}

func TestExtractMissingFieldsCoercedEmpty(t *testing.T) {
	cards, _, err := Extract("- word: cat")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].Back != "" || cards[0].Tags != "" {
		t.Errorf("expected empty back/tags, got %+v", cards[0])
	}
}

func TestExtractPreservesOrder(t *testing.T) {
	input := "- word: zebra\n- word: apple\n- word: mango"

	cards, _, err := Extract(input)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	got := make([]string, len(cards))
	for i, card := range cards {
		got[i] = card.Word
	}
	want := "zebra,apple,mango"
	if strings.Join(got, ",") != want {
		t.Errorf("got order %v, want %s", got, want)
	}
}
