package wellness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arunalab/aruna/backend/internal/analysis/risk"
	"github.com/arunalab/aruna/backend/internal/model/conversation"
)

func TestDetermineEscalationOverridesEverything(t *testing.T) {
	a := risk.Assessment{Level: risk.LevelCritical, Action: risk.ActionEscalateImmediately}

	got := Determine("stable", a, conversation.ConfidenceHigh)
	assert.Equal(t, conversation.ZoneNeedsAttention, got)
}

func TestDetermineUnparseableHintDefaultsToAdapting(t *testing.T) {
	got := Determine("totally fine", risk.Assessment{Action: risk.ActionProceed}, conversation.ConfidenceHigh)
	assert.Equal(t, conversation.ZoneAdapting, got)
}

func TestDetermineMediumMatchesUpgradeOneStep(t *testing.T) {
	a := risk.Assessment{Level: risk.LevelMedium, Action: risk.ActionMonitor, MediumMatches: 2}

	assert.Equal(t, conversation.ZoneAdapting, Determine("stable", a, conversation.ConfidenceHigh))
	assert.Equal(t, conversation.ZoneNeedsSupport, Determine("adapting", a, conversation.ConfidenceHigh))
	// Already at the step ceiling for this rule.
	assert.Equal(t, conversation.ZoneNeedsSupport, Determine("needs_support", a, conversation.ConfidenceHigh))
}

func TestDetermineSingleMediumMatchKeepsHint(t *testing.T) {
	a := risk.Assessment{Level: risk.LevelMedium, Action: risk.ActionMonitor, MediumMatches: 1}
	assert.Equal(t, conversation.ZoneStable, Determine("stable", a, conversation.ConfidenceHigh))
}

func TestDetermineLowConfidenceBiasesToAdapting(t *testing.T) {
	a := risk.Assessment{Action: risk.ActionProceed}

	assert.Equal(t, conversation.ZoneAdapting, Determine("stable", a, conversation.ConfidenceLow))
	assert.Equal(t, conversation.ZoneAdapting, Determine("adapting", a, conversation.ConfidenceLow))
	// Low confidence never downgrades a severe hint.
	assert.Equal(t, conversation.ZoneNeedsSupport, Determine("needs_support", a, conversation.ConfidenceLow))
}

func TestDetermineRulesCompose(t *testing.T) {
	// Two medium matches upgrade stable to adapting; low confidence then
	// keeps it there.
	a := risk.Assessment{Level: risk.LevelMedium, Action: risk.ActionMonitor, MediumMatches: 3}
	assert.Equal(t, conversation.ZoneAdapting, Determine("stable", a, conversation.ConfidenceLow))
}
