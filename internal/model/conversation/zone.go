package conversation

// WellnessZone is the ordered wellness severity classification, coarser than
// the raw emotion. It is owned by the session and computed exclusively by the
// wellness policy.
type WellnessZone string

const (
	ZoneStable         WellnessZone = "stable"
	ZoneAdapting       WellnessZone = "adapting"
	ZoneNeedsSupport   WellnessZone = "needs_support"
	ZoneNeedsAttention WellnessZone = "needs_attention"
)

// zoneSeverity orders zones for escalation comparisons.
var zoneSeverity = map[WellnessZone]int{
	ZoneStable:         0,
	ZoneAdapting:       1,
	ZoneNeedsSupport:   2,
	ZoneNeedsAttention: 3,
}

// ParseZone validates a zone hint. The second result is false when the hint
// is unparseable.
func ParseZone(raw string) (WellnessZone, bool) {
	z := WellnessZone(raw)
	if _, ok := zoneSeverity[z]; ok {
		return z, true
	}
	return "", false
}

// Severity returns the zone's position in the severity order.
func (z WellnessZone) Severity() int {
	return zoneSeverity[z]
}

// AtLeast reports whether z is at least as severe as other.
func (z WellnessZone) AtLeast(other WellnessZone) bool {
	return zoneSeverity[z] >= zoneSeverity[other]
}

// Escalate returns the zone one severity step up. Zones at or above
// needs-support are returned unchanged.
func (z WellnessZone) Escalate() WellnessZone {
	switch z {
	case ZoneStable:
		return ZoneAdapting
	case ZoneAdapting:
		return ZoneNeedsSupport
	}
	return z
}
