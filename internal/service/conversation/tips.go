package conversation

import (
	"github.com/arunalab/aruna/backend/internal/knowledge"
	model "github.com/arunalab/aruna/backend/internal/model/conversation"
)

// selectTips picks up to count tips for the session: zone tips carry
// priority over emotion tips, duplicates are dropped by id, and the first
// pass prefers category variety before remaining slots are filled in order.
func selectTips(kb *knowledge.Base, zone model.WellnessZone, emotionID string, count int) []knowledge.Tip {
	seen := make(map[string]bool)
	var merged []knowledge.Tip

	for _, tip := range kb.TipsByZone(zone) {
		if tip.ID == "" || seen[tip.ID] {
			continue
		}
		seen[tip.ID] = true
		merged = append(merged, tip)
	}
	if emotionID != "" {
		for _, tip := range kb.TipsByEmotion(emotionID) {
			if tip.ID == "" || seen[tip.ID] {
				continue
			}
			seen[tip.ID] = true
			merged = append(merged, tip)
		}
	}

	if len(merged) <= count {
		return merged
	}

	categories := make(map[string]bool)
	selected := make([]knowledge.Tip, 0, count)
	var remaining []knowledge.Tip

	for _, tip := range merged {
		category := tip.Category
		if category == "" {
			category = "general"
		}
		if !categories[category] && len(selected) < count {
			categories[category] = true
			selected = append(selected, tip)
		} else {
			remaining = append(remaining, tip)
		}
	}
	for len(selected) < count && len(remaining) > 0 {
		selected = append(selected, remaining[0])
		remaining = remaining[1:]
	}

	return selected
}

func tipIDs(tips []knowledge.Tip) []string {
	ids := make([]string, 0, len(tips))
	for _, tip := range tips {
		ids = append(ids, tip.ID)
	}
	return ids
}
