package risk

import (
	"strings"
	"testing"
)

func TestCheckCriticalAlwaysEscalates(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{
		"I want to kill myself",
		"aku ingin bunuh diri",
		"sometimes I think about self-harm",
	} {
		a := c.Check(text)
		if a.Level != LevelCritical {
			t.Fatalf("%q: level = %s", text, a.Level)
		}
		if a.Action != ActionEscalateImmediately {
			t.Fatalf("%q: action = %s", text, a.Action)
		}
	}
}

func TestCheckFlagsAccumulateAcrossTiers(t *testing.T) {
	c := NewClassifier()

	a := c.Check("I get beaten at home and I want to end my life")
	if a.Level != LevelCritical {
		t.Fatalf("level = %s", a.Level)
	}
	if a.Action != ActionEscalateImmediately {
		t.Fatalf("action = %s", a.Action)
	}

	var hasCritical, hasHigh bool
	for _, f := range a.Flags {
		if strings.HasPrefix(f, "critical: ") {
			hasCritical = true
		}
		if strings.HasPrefix(f, "high: ") {
			hasHigh = true
		}
	}
	if !hasCritical || !hasHigh {
		t.Fatalf("expected flags from both tiers, got %v", a.Flags)
	}
}

func TestCheckMediumMatchesCounted(t *testing.T) {
	c := NewClassifier()

	a := c.Check("I feel very alone and nobody cares, I've been crying every day")
	if a.Level != LevelMedium {
		t.Fatalf("level = %s", a.Level)
	}
	if a.Action != ActionMonitor {
		t.Fatalf("action = %s", a.Action)
	}
	if a.MediumMatches < 2 {
		t.Fatalf("expected at least two medium matches, got %d", a.MediumMatches)
	}
}

func TestCheckOutOfScopeRedirects(t *testing.T) {
	c := NewClassifier()

	a := c.Check("do you think I need medication for this?")
	if a.Action != ActionRedirect {
		t.Fatalf("action = %s", a.Action)
	}
	if a.Level != LevelNone {
		t.Fatalf("level = %s", a.Level)
	}
}

func TestCheckRiskOutranksOutOfScope(t *testing.T) {
	c := NewClassifier()

	// A message with both a critical phrase and a clinical question still
	// escalates.
	a := c.Check("I want to die, should I get medication?")
	if a.Action != ActionEscalateImmediately {
		t.Fatalf("action = %s", a.Action)
	}
}

func TestCheckInappropriateDeclines(t *testing.T) {
	c := NewClassifier()

	a := c.Check("jual narkoba dong")
	if a.Action != ActionDecline {
		t.Fatalf("action = %s", a.Action)
	}
}

func TestCheckCleanTextProceeds(t *testing.T) {
	c := NewClassifier()

	a := c.Check("today my friend shared lunch with me and it made me happy")
	if a.Action != ActionProceed {
		t.Fatalf("action = %s", a.Action)
	}
	if len(a.Flags) != 0 {
		t.Fatalf("unexpected flags: %v", a.Flags)
	}
}
