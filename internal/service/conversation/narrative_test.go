package conversation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAnswerExcerptCountsRunes(t *testing.T) {
	// 100 runes but 200 bytes: fits the limit and passes through whole.
	short := strings.Repeat("é", 100)
	if got := answerExcerpt(short, 120); got != short {
		t.Fatalf("multi-byte answer within limit was cut: %q", got)
	}
}

func TestAnswerExcerptCutsOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("😔", 130)
	got := answerExcerpt(long, 120)
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("excerpt missing ellipsis: %q", got)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "...")); n != 120 {
		t.Fatalf("excerpt rune count = %d", n)
	}
}

func TestAnswerExcerptBreaksAtLastSpace(t *testing.T) {
	long := strings.Repeat("kata panjang ", 20)
	got := answerExcerpt(long, 120)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("excerpt missing ellipsis: %q", got)
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "..."), " ") {
		t.Fatalf("excerpt ends mid-word boundary: %q", got)
	}
	if utf8.RuneCountInString(got) > 123 {
		t.Fatalf("excerpt too long: %d runes", utf8.RuneCountInString(got))
	}
}
