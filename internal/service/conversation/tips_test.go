package conversation

import (
	"testing"

	model "github.com/arunalab/aruna/backend/internal/model/conversation"
)

func TestSelectTipsPrefersZoneAndVariety(t *testing.T) {
	kb := newTestKB(t)

	tips := selectTips(kb, model.ZoneAdapting, "sad", 3)
	if len(tips) != 3 {
		t.Fatalf("selected %d tips", len(tips))
	}

	seen := map[string]bool{}
	for _, tip := range tips {
		if seen[tip.ID] {
			t.Fatalf("tip %s selected twice", tip.ID)
		}
		seen[tip.ID] = true
	}

	categories := map[string]bool{}
	for _, tip := range tips {
		categories[tip.Category] = true
	}
	if len(categories) < 2 {
		t.Fatalf("expected category variety, got %v", categories)
	}
}

func TestSelectTipsFallsBackToEmotion(t *testing.T) {
	kb := newTestKB(t)

	// needs_attention only has one zone-tagged tip; emotion tips fill in.
	tips := selectTips(kb, model.ZoneNeedsAttention, "sad", 3)
	if len(tips) < 2 {
		t.Fatalf("selected %d tips", len(tips))
	}
	if tips[0].ID != "tip_breathe" {
		t.Fatalf("zone tip not first: %s", tips[0].ID)
	}
}

func TestSelectTipsEmptyKnowledge(t *testing.T) {
	kb := newTestKB(t)

	tips := selectTips(kb, model.ZoneStable, "surprised", 0)
	if len(tips) != 0 {
		t.Fatalf("expected no tips for zero count, got %d", len(tips))
	}
}

func TestMapAnswerOpenPassthrough(t *testing.T) {
	q := model.Question{Kind: model.QuestionOpen}
	if got := mapAnswer("  my answer  ", q); got != "my answer" {
		t.Fatalf("mapAnswer = %q", got)
	}
}

func TestMapAnswerMCOutOfRangeNumber(t *testing.T) {
	q := model.Question{Kind: model.QuestionMC, Options: []string{"A", "B"}}
	if got := mapAnswer("7", q); got != "7" {
		t.Fatalf("mapAnswer = %q", got)
	}
}

func TestMapAnswerMCCaseInsensitive(t *testing.T) {
	q := model.Question{Kind: model.QuestionMC, Options: []string{"Almost every day", "Rarely"}}
	if got := mapAnswer("RARELY", q); got != "Rarely" {
		t.Fatalf("mapAnswer = %q", got)
	}
	if got := mapAnswer("almost", q); got != "Almost every day" {
		t.Fatalf("mapAnswer = %q", got)
	}
}

func TestMapAnswerMCNoMatchVerbatim(t *testing.T) {
	q := model.Question{Kind: model.QuestionMC, Options: []string{"Family", "Friends"}}
	if got := mapAnswer("my teacher", q); got != "my teacher" {
		t.Fatalf("mapAnswer = %q", got)
	}
}
