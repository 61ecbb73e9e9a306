// Package risk scans raw user text against layered keyword/pattern tiers and
// yields an operational risk tier plus a recommended action. The scan is
// deterministic and independent of conversation phase.
package risk

import (
	"regexp"
	"strings"
)

// Level is the totally ordered risk tier derived from text scanning.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	}
	return "none"
}

// Action is the recommended handling for a message, in fixed precedence.
type Action string

const (
	ActionProceed             Action = "proceed"
	ActionMonitor             Action = "monitor"
	ActionFlagForReview       Action = "flag_for_review"
	ActionRedirect            Action = "redirect"
	ActionDecline             Action = "decline"
	ActionEscalateImmediately Action = "escalate_immediately"
)

// Assessment is the result of one message scan. Derived fresh per message;
// it is logged but never stored as primary session state.
type Assessment struct {
	Level         Level
	Flags         []string
	MediumMatches int
	Action        Action
}

// Pattern tiers. Each tier is matched independently so flags accumulate;
// patterns cover English and Indonesian phrasing.
var (
	criticalPatterns = compile(
		`\bsuicide\b`, `\bkill\s+myself\b`, `\bend\s+my\s+life\b`,
		`\bwant(?:\s+to)?\s+die\b`, `\bself[\s-]*harm\b`, `\bcutting\b`,
		`\bhurt(?:ing)?\s+myself\b`, `\boverdose\b`,
		`\bbunuh\s+diri\b`, `\bingin\s+mati\b`, `\bmengakhiri\s+hidup\b`,
		`\btidak\s+ingin\s+hidup\b`, `\bmenyakiti\s+diri\b`, `\bmenyayat\b`,
		`\bgantung\s+diri\b`,
	)

	highPatterns = compile(
		`\babuse[d]?\b`, `\bbeaten\b`, `\bviolence\b`, `\bthreatened\b`,
		`\bnot\s+safe\b`, `\bunsafe\s+at\s+home\b`, `\bhopeless\b`,
		`\brun(?:ning)?\s+away\s+from\s+home\b`, `\bafraid\s+to\s+go\s+home\b`,
		`\bdipukul\b`, `\bdianiaya\b`, `\bkekerasan\b`, `\bpelecehan\b`,
		`\bdilecehkan\b`, `\bterancam\b`, `\btakut\s+pulang\b`,
		`\bkabur\s+dari\s+rumah\b`, `\bsangat\s+putus\s+asa\b`,
	)

	mediumPatterns = compile(
		`\bbull(?:y|ied|ying)\b`, `\balone\b`, `\blonely\b`,
		`\bnobody\s+cares\b`, `\bno\s+one\s+cares\b`, `\bcry(?:ing)?\b`,
		`\bcan'?t\s+sleep\b`, `\binsomnia\b`, `\bno\s+appetite\b`,
		`\bfeel(?:ing)?\s+empty\b`, `\bdepress(?:ed|ion)\b`,
		`\bdibully\b`, `\bdi-bully\b`, `\bsendiri(?:an)?\b`,
		`\btidak\s+ada\s+yang\s+peduli\b`, `\btidak\s+bisa\s+tidur\b`,
		`\btidak\s+nafsu\s+makan\b`, `\bterus\s+menangis\b`, `\bdepresi\b`,
	)

	outOfScopePatterns = compile(
		`\bdiagnos(?:is|e|a)\b`, `\bmedication\b`, `\bprescri(?:be|ption)\b`,
		`\bdisorder\b`, `\bdo\s+i\s+have\s+(?:depression|anxiety|adhd)\b`,
		`\bobat\b`, `\bmedikasi\b`, `\bpsikiater\b`, `\bgangguan\s+mental\b`,
	)

	inappropriatePatterns = compile(
		`\bfuck\b`, `\bshit\b`, `\bporn\b`, `\bsex\b`, `\bdrugs?\b`,
		`\bseks\b`, `\bporno\b`, `\bnarkoba\b`, `\bmiras\b`,
		`\banjing\b`, `\bkontol\b`,
	)
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Classifier scans messages against the pattern tiers. Safe for concurrent
// use; the compiled tiers are immutable.
type Classifier struct{}

// NewClassifier returns a ready classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Check evaluates every tier (no short-circuit, so flags accumulate) and
// derives the recommended action by fixed precedence.
func (c *Classifier) Check(text string) Assessment {
	var a Assessment

	critical := matchAll(criticalPatterns, text)
	for _, m := range critical {
		a.Flags = append(a.Flags, "critical: "+m)
	}
	high := matchAll(highPatterns, text)
	for _, m := range high {
		a.Flags = append(a.Flags, "high: "+m)
	}
	medium := matchAll(mediumPatterns, text)
	for _, m := range medium {
		a.Flags = append(a.Flags, "medium: "+m)
	}
	a.MediumMatches = len(medium)

	oos := matchAll(outOfScopePatterns, text)
	for _, m := range oos {
		a.Flags = append(a.Flags, "out_of_scope: "+m)
	}
	inappropriate := matchAll(inappropriatePatterns, text)
	for _, m := range inappropriate {
		a.Flags = append(a.Flags, "inappropriate: "+m)
	}

	switch {
	case len(critical) > 0:
		a.Level = LevelCritical
	case len(high) > 0:
		a.Level = LevelHigh
	case len(medium) > 0:
		a.Level = LevelMedium
	}

	switch {
	case a.Level == LevelCritical:
		a.Action = ActionEscalateImmediately
	case a.Level == LevelHigh:
		a.Action = ActionFlagForReview
	case a.Level == LevelMedium:
		a.Action = ActionMonitor
	case len(oos) > 0:
		a.Action = ActionRedirect
	case len(inappropriate) > 0:
		a.Action = ActionDecline
	default:
		a.Action = ActionProceed
	}

	return a
}

func matchAll(patterns []*regexp.Regexp, text string) []string {
	var matches []string
	for _, p := range patterns {
		if m := p.FindString(text); m != "" {
			matches = append(matches, strings.ToLower(m))
		}
	}
	return matches
}
