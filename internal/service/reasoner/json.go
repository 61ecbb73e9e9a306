package reasoner

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

type emotionPayload struct {
	PrimaryEmotion   string   `json:"primary_emotion"`
	SecondaryEmotion string   `json:"secondary_emotion"`
	TertiaryEmotion  string   `json:"tertiary_emotion"`
	Keywords         []string `json:"keywords"`
	Confidence       string   `json:"confidence"`
	WellnessZone     string   `json:"wellness_zone"`
	Reasoning        string   `json:"reasoning"`
}

type narrativePayload struct {
	Narrative    string   `json:"narrative"`
	WellnessZone string   `json:"wellness_zone"`
	Insights     []string `json:"insights"`
}

var (
	errNoJSON = errors.New("no JSON object found in response")

	fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
)

// extractJSON pulls the first well-formed object out of model output, which
// may be bare JSON, a fenced code block, or JSON embedded in prose.
func extractJSON[T any](text string) (T, error) {
	var out T

	trimmed := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return out, nil
	}

	if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &out); err == nil {
			return out, nil
		}
	}

	if obj := firstBalancedObject(trimmed); obj != "" {
		if err := json.Unmarshal([]byte(obj), &out); err == nil {
			return out, nil
		}
	}

	return out, errNoJSON
}

// firstBalancedObject scans for the first brace-balanced object, ignoring
// braces inside string literals.
func firstBalancedObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
