// Package wellness fuses an externally supplied zone hint with deterministic
// risk evidence into the final wellness zone for a session.
package wellness

import (
	"github.com/arunalab/aruna/backend/internal/analysis/risk"
	"github.com/arunalab/aruna/backend/internal/model/conversation"
)

// mediumFlagThreshold is the number of medium-tier matches that forces a
// one-step zone upgrade.
const mediumFlagThreshold = 2

// Determine produces the final zone from a detection hint, the risk
// assessment of the same text, and the detection confidence. It is pure and
// only upholds or escalates: a zone is never downgraded below the risk
// evidence. Rule order, first match wins:
//
//  1. escalate-immediately forces needs-attention, ignoring the hint
//  2. start from the hint, defaulting to adapting when unparseable
//  3. two or more medium-tier matches upgrade one severity step
//  4. low confidence biases stable/adapting toward adapting
func Determine(hint string, assessment risk.Assessment, confidence conversation.Confidence) conversation.WellnessZone {
	if assessment.Action == risk.ActionEscalateImmediately {
		return conversation.ZoneNeedsAttention
	}

	zone, ok := conversation.ParseZone(hint)
	if !ok {
		zone = conversation.ZoneAdapting
	}

	if assessment.MediumMatches >= mediumFlagThreshold {
		zone = zone.Escalate()
	}

	if confidence == conversation.ConfidenceLow &&
		(zone == conversation.ZoneStable || zone == conversation.ZoneAdapting) {
		zone = conversation.ZoneAdapting
	}

	return zone
}
