package conversation

import (
	"time"

	"github.com/google/uuid"
)

// ReflectionTarget is the number of reflection answers collected per session.
const ReflectionTarget = 5

// ReasonerCallCeiling is the hard per-session budget of external generation
// calls: one for emotion detection, one for narrative synthesis.
const ReasonerCallCeiling = 2

// Confidence is the tiered certainty of an emotion detection.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence normalizes a raw confidence value, defaulting to medium.
func ParseConfidence(raw string) Confidence {
	switch Confidence(raw) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(raw)
	}
	return ConfidenceMedium
}

// QuestionKind distinguishes open reflection prompts from multiple choice.
type QuestionKind string

const (
	QuestionOpen QuestionKind = "open"
	QuestionMC   QuestionKind = "mc"
)

// Question is one reflection prompt, fixed at phase entry.
type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Kind    QuestionKind `json:"kind"`
	Options []string     `json:"options,omitempty"`
}

// QAPair stores one answered reflection question, in answer order.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Detection is the emotion classification applied to a session, either from
// the external reasoner or from the deterministic fallback.
type Detection struct {
	Primary    string
	Secondary  string
	Tertiary   string
	Keywords   []string
	Confidence Confidence
}

// Session is the mutable per-session record. It is not internally
// synchronized: the orchestrator serializes turns per session id.
type Session struct {
	ID       string
	UserID   string
	Language string

	Phase Phase
	Story string

	PrimaryEmotion   string
	SecondaryEmotion string
	TertiaryEmotion  string
	Keywords         []string
	Confidence       Confidence

	Zone WellnessZone

	Questions []Question
	Answers   []QAPair
	Cursor    int

	Narrative string
	Insights  []string

	SelectedTipIDs []string

	ReasonerCalls int

	CreatedAt    time.Time
	LastActivity time.Time
}

// NewSession creates a session in the first phase.
func NewSession(userID, language string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Language:     language,
		Phase:        PhaseStory,
		Zone:         ZoneAdapting,
		Confidence:   ConfidenceMedium,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch updates the activity timestamp.
func (s *Session) Touch() {
	s.LastActivity = time.Now().UTC()
}

// RecordStory appends a user message to the accumulated story.
func (s *Session) RecordStory(text string) {
	if s.Story == "" {
		s.Story = text
		return
	}
	s.Story += "\n" + text
}

// SetDetectedEmotion applies a detection result, enforcing parent/child
// consistency: a secondary without a primary is dropped, and a tertiary
// without a secondary is dropped along with it. Unknown taxonomy ids are
// cleared by the reasoner before the result reaches the session.
func (s *Session) SetDetectedEmotion(d Detection) {
	if d.Primary == "" {
		d.Secondary = ""
	}
	if d.Secondary == "" {
		d.Tertiary = ""
	}

	s.PrimaryEmotion = d.Primary
	s.SecondaryEmotion = d.Secondary
	s.TertiaryEmotion = d.Tertiary
	s.Keywords = d.Keywords
	s.Confidence = ParseConfidence(string(d.Confidence))
}

// SetQuestions fixes the reflection question set at phase entry and resets
// the cursor.
func (s *Session) SetQuestions(questions []Question) {
	s.Questions = questions
	s.Answers = nil
	s.Cursor = 0
}

// CurrentQuestion returns the question at the cursor, or nil once the set is
// exhausted.
func (s *Session) CurrentQuestion() *Question {
	if s.Cursor < len(s.Questions) {
		return &s.Questions[s.Cursor]
	}
	return nil
}

// AddReflectionAnswer appends an answered pair and advances the cursor.
// Beyond the target it is a no-op, keeping the recorded count stable.
func (s *Session) AddReflectionAnswer(question, answer string) {
	if len(s.Answers) >= ReflectionTarget {
		return
	}
	s.Answers = append(s.Answers, QAPair{Question: question, Answer: answer})
	s.Cursor++
}

// IsReflectionComplete reports whether all reflection answers are recorded.
func (s *Session) IsReflectionComplete() bool {
	return len(s.Answers) >= ReflectionTarget
}

// CanCallReasoner reports whether the external-call budget allows another
// generation call.
func (s *Session) CanCallReasoner() bool {
	return s.ReasonerCalls < ReasonerCallCeiling
}

// IncrementReasonerCall spends one budget unit. The counter never exceeds
// the ceiling.
func (s *Session) IncrementReasonerCall() {
	if s.ReasonerCalls < ReasonerCallCeiling {
		s.ReasonerCalls++
	}
}

// SetNarrative stores the synthesized narrative and its insights.
func (s *Session) SetNarrative(narrative string, insights []string) {
	s.Narrative = narrative
	s.Insights = insights
}

// IsComplete reports whether the session reached the terminal phase.
func (s *Session) IsComplete() bool {
	return s.Phase == PhaseDone
}
