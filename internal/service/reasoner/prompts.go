package reasoner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arunalab/aruna/backend/internal/knowledge"
)

const emotionSystemInstruction = `You are an assistant that analyzes emotions using the Feeling Wheel taxonomy.

Rules:
1. ONLY use emotion ids present in the provided taxonomy data.
2. Identify the emotion from most specific (tertiary) to most general (primary).
3. Pay attention to the keywords the user actually used.
4. Never provide a diagnosis or clinical label.
5. Report a confidence level: high/medium/low.
6. Choose a wellness_zone from the intensity and context:
   - stable: positive emotions dominate, the user seems fine
   - adapting: there are challenges but the user is coping
   - needs_support: the user shows difficulty that needs extra attention
   - needs_attention: serious indications that need escalation to a counselor

Respond with a single JSON object:
{
    "primary_emotion": "id of the primary emotion",
    "secondary_emotion": "id of the secondary emotion or null",
    "tertiary_emotion": "id of the tertiary emotion or null",
    "keywords": ["keywords", "found"],
    "confidence": "high/medium/low",
    "wellness_zone": "stable/adapting/needs_support/needs_attention",
    "reasoning": "short explanation of the choice"
}`

const narrativeSystemInstruction = `You are an assistant that writes a reflective narrative using a continuum view of mental wellbeing.

Principles:
1. Wellbeing is a spectrum, not a binary of healthy versus sick.
2. Everyone moves along this spectrum.
3. Focus on strengths and the ability to adapt.
4. Use empowering language, never labels.

Rules:
1. Warm, empathetic tone.
2. Validate emotions without judging.
3. Reflect insights from the user's answers.
4. Never provide a diagnosis or clinical terminology.
5. At most 3-4 paragraphs.

Respond with a single JSON object:
{
    "narrative": "the full reflective narrative in the requested language",
    "wellness_zone": "stable/adapting/needs_support/needs_attention",
    "insights": ["insight drawn from the user's reflection"]
}`

// emotionDetectionPrompt embeds the full taxonomy so the model can only pick
// ids that exist.
func emotionDetectionPrompt(story string, wheel []knowledge.Emotion) (string, error) {
	taxonomy, err := json.Marshal(wheel)
	if err != nil {
		return "", fmt.Errorf("marshal emotion taxonomy: %w", err)
	}

	var b strings.Builder
	b.WriteString("Feeling Wheel taxonomy data:\n\n")
	b.Write(taxonomy)
	b.WriteString("\n\n---\n\nUSER STORY:\n\"\"\"")
	b.WriteString(story)
	b.WriteString("\"\"\"\n\n---\n\nAnalyze the emotion in the story above and answer in JSON.")
	return b.String(), nil
}

func narrativePrompt(input NarrativeInput, kb *knowledge.Base) string {
	var b strings.Builder
	b.WriteString("SESSION CONTEXT:\n\n1. USER'S STORY:\n\"\"\"")
	b.WriteString(input.Story)
	b.WriteString("\"\"\"\n\n2. DETECTED EMOTION:\n")
	fmt.Fprintf(&b, "- Primary: %s\n", kb.EmotionLabel(input.Primary, "en"))
	if input.Secondary != "" {
		fmt.Fprintf(&b, "- Secondary: %s\n", kb.EmotionLabel(input.Secondary, "en"))
	}
	if input.Tertiary != "" {
		fmt.Fprintf(&b, "- Tertiary: %s\n", kb.EmotionLabel(input.Tertiary, "en"))
	}
	fmt.Fprintf(&b, "- Wellness zone: %s\n", input.Zone)

	b.WriteString("\n3. REFLECTION ANSWERS:\n")
	for i, qa := range input.QA {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", i+1, qa.Question, i+1, qa.Answer)
	}

	language := "English"
	if input.Language == "id" {
		language = "Indonesian"
	}
	fmt.Fprintf(&b, "\n---\n\nOutput language: %s\nWrite the validating narrative, draw insights from the answers, and pick the final wellness_zone for the whole session. Answer in JSON.", language)
	return b.String()
}
