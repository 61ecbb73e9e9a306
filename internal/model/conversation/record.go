package conversation

import "time"

// Record is the persistence-neutral serialization of a session. The
// ToRecord/FromRecord round trip is lossless for every field.
type Record struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Language string `json:"language"`

	Phase string `json:"phase"`
	Story string `json:"story"`

	PrimaryEmotion   string   `json:"primaryEmotion,omitempty"`
	SecondaryEmotion string   `json:"secondaryEmotion,omitempty"`
	TertiaryEmotion  string   `json:"tertiaryEmotion,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	Confidence       string   `json:"confidence"`

	Zone string `json:"zone"`

	Questions []Question `json:"questions,omitempty"`
	Answers   []QAPair   `json:"answers,omitempty"`
	Cursor    int        `json:"cursor"`

	Narrative string   `json:"narrative,omitempty"`
	Insights  []string `json:"insights,omitempty"`

	SelectedTipIDs []string `json:"selectedTipIds,omitempty"`

	ReasonerCalls int `json:"reasonerCalls"`

	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// ToRecord snapshots the session for persistence.
func (s *Session) ToRecord() Record {
	return Record{
		ID:               s.ID,
		UserID:           s.UserID,
		Language:         s.Language,
		Phase:            string(s.Phase),
		Story:            s.Story,
		PrimaryEmotion:   s.PrimaryEmotion,
		SecondaryEmotion: s.SecondaryEmotion,
		TertiaryEmotion:  s.TertiaryEmotion,
		Keywords:         s.Keywords,
		Confidence:       string(s.Confidence),
		Zone:             string(s.Zone),
		Questions:        s.Questions,
		Answers:          s.Answers,
		Cursor:           s.Cursor,
		Narrative:        s.Narrative,
		Insights:         s.Insights,
		SelectedTipIDs:   s.SelectedTipIDs,
		ReasonerCalls:    s.ReasonerCalls,
		CreatedAt:        s.CreatedAt,
		LastActivity:     s.LastActivity,
	}
}

// FromRecord reconstructs a session from its persisted form. Unknown phase or
// zone values are corrected to safe defaults rather than failing the load.
func FromRecord(r Record) *Session {
	phase, ok := ParsePhase(r.Phase)
	if !ok {
		phase = PhaseStory
	}
	zone, ok := ParseZone(r.Zone)
	if !ok {
		zone = ZoneAdapting
	}

	return &Session{
		ID:               r.ID,
		UserID:           r.UserID,
		Language:         r.Language,
		Phase:            phase,
		Story:            r.Story,
		PrimaryEmotion:   r.PrimaryEmotion,
		SecondaryEmotion: r.SecondaryEmotion,
		TertiaryEmotion:  r.TertiaryEmotion,
		Keywords:         r.Keywords,
		Confidence:       ParseConfidence(r.Confidence),
		Zone:             zone,
		Questions:        r.Questions,
		Answers:          r.Answers,
		Cursor:           r.Cursor,
		Narrative:        r.Narrative,
		Insights:         r.Insights,
		SelectedTipIDs:   r.SelectedTipIDs,
		ReasonerCalls:    r.ReasonerCalls,
		CreatedAt:        r.CreatedAt,
		LastActivity:     r.LastActivity,
	}
}
