package conversation

import "time"

// Role identifies the author of a logged message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message persists individual turns for audit. The log is append-only.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Phase     Phase     `json:"phase"`
	Kind      string    `json:"kind"` // "text" or "escalation"
	CreatedAt time.Time `json:"createdAt"`
}

// EmotionLog is one audit row per emotion detection.
type EmotionLog struct {
	ID               string       `json:"id"`
	SessionID        string       `json:"sessionId"`
	PrimaryEmotion   string       `json:"primaryEmotion"`
	SecondaryEmotion string       `json:"secondaryEmotion,omitempty"`
	TertiaryEmotion  string       `json:"tertiaryEmotion,omitempty"`
	Keywords         []string     `json:"keywords,omitempty"`
	Confidence       Confidence   `json:"confidence"`
	Zone             WellnessZone `json:"zone"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// Reflection is the audit record of a completed reflection: the answered
// pairs, the synthesized narrative, and the selected tip ids.
type Reflection struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Answers   []QAPair  `json:"answers"`
	Narrative string    `json:"narrative"`
	TipIDs    []string  `json:"tipIds,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
