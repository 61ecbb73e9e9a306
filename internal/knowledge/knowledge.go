// Package knowledge loads the read-only knowledge base (emotion taxonomy,
// reflection question sets, coping tips, wellness zone metadata) from YAML
// files once at startup.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arunalab/aruna/backend/internal/model/conversation"
)

// Text is a localized string keyed by language code.
type Text map[string]string

// In returns the text for lang, falling back to English, then any value.
func (t Text) In(lang string) string {
	if v, ok := t[lang]; ok && v != "" {
		return v
	}
	if v, ok := t["en"]; ok && v != "" {
		return v
	}
	for _, v := range t {
		return v
	}
	return ""
}

// Emotion is one node of the three-level taxonomy.
type Emotion struct {
	ID          string    `yaml:"id"`
	Label       Text      `yaml:"label"`
	Description Text      `yaml:"description,omitempty"`
	Secondary   []Emotion `yaml:"secondary,omitempty"`
	Tertiary    []Emotion `yaml:"tertiary,omitempty"`
}

// EmotionEntry is a resolved taxonomy node with its position.
type EmotionEntry struct {
	Emotion
	Level  string // "primary", "secondary", "tertiary"
	Parent string // empty for primary
}

// Question is one authored reflection prompt.
type Question struct {
	ID       string `yaml:"id"`
	Question Text   `yaml:"question"`
	Options  []Text `yaml:"options,omitempty"`
}

// QuestionSet groups the authored prompts for one emotion id.
type QuestionSet struct {
	Open           []Question `yaml:"open"`
	MultipleChoice []Question `yaml:"multiple_choice"`
}

// Tip is one coping suggestion, tagged for selection by zone and emotion.
type Tip struct {
	ID          string   `yaml:"id"`
	Category    string   `yaml:"category"`
	Zones       []string `yaml:"zones"`
	Emotions    []string `yaml:"emotions,omitempty"`
	Name        Text     `yaml:"name"`
	Description Text     `yaml:"description"`
	Duration    string   `yaml:"duration,omitempty"`
}

// ZoneInfo is display metadata for one wellness zone.
type ZoneInfo struct {
	ID          string `yaml:"id"`
	Emoji       string `yaml:"emoji"`
	Label       Text   `yaml:"label"`
	Description Text   `yaml:"description"`
}

type wheelFile struct {
	PrimaryEmotions []Emotion `yaml:"primary_emotions"`
}

type questionsFile struct {
	Emotions map[string]QuestionSet `yaml:"emotions"`
	Defaults QuestionSet            `yaml:"defaults"`
}

type tipsFile struct {
	Tips []Tip `yaml:"tips"`
}

type zonesFile struct {
	Zones []ZoneInfo `yaml:"zones"`
}

// Base is the immutable, fully indexed knowledge base.
type Base struct {
	wheel     []Emotion
	emotions  map[string]EmotionEntry
	questions map[string]QuestionSet
	defaults  QuestionSet
	tips      []Tip
	byZone    map[string][]Tip
	byEmotion map[string][]Tip
	zones     map[string]ZoneInfo
}

// Load reads every knowledge file under dir and builds the indexes. A missing
// or malformed file is fatal for service startup.
func Load(dir string) (*Base, error) {
	var wheel wheelFile
	if err := readYAML(filepath.Join(dir, "emotion_wheel.yaml"), &wheel); err != nil {
		return nil, err
	}
	var questions questionsFile
	if err := readYAML(filepath.Join(dir, "reflection_questions.yaml"), &questions); err != nil {
		return nil, err
	}
	var tips tipsFile
	if err := readYAML(filepath.Join(dir, "coping_tips.yaml"), &tips); err != nil {
		return nil, err
	}
	var zones zonesFile
	if err := readYAML(filepath.Join(dir, "wellness_zones.yaml"), &zones); err != nil {
		return nil, err
	}

	b := &Base{
		wheel:     wheel.PrimaryEmotions,
		emotions:  make(map[string]EmotionEntry),
		questions: questions.Emotions,
		defaults:  questions.Defaults,
		tips:      tips.Tips,
		byZone:    make(map[string][]Tip),
		byEmotion: make(map[string][]Tip),
		zones:     make(map[string]ZoneInfo),
	}

	for _, primary := range wheel.PrimaryEmotions {
		b.emotions[primary.ID] = EmotionEntry{Emotion: primary, Level: "primary"}
		for _, secondary := range primary.Secondary {
			b.emotions[secondary.ID] = EmotionEntry{Emotion: secondary, Level: "secondary", Parent: primary.ID}
			for _, tertiary := range secondary.Tertiary {
				b.emotions[tertiary.ID] = EmotionEntry{Emotion: tertiary, Level: "tertiary", Parent: secondary.ID}
			}
		}
	}
	if len(b.emotions) == 0 {
		return nil, fmt.Errorf("knowledge: emotion wheel is empty")
	}

	for _, tip := range tips.Tips {
		for _, zone := range tip.Zones {
			b.byZone[zone] = append(b.byZone[zone], tip)
		}
		for _, emotion := range tip.Emotions {
			b.byEmotion[emotion] = append(b.byEmotion[emotion], tip)
		}
	}

	for _, zone := range zones.Zones {
		b.zones[zone.ID] = zone
	}
	for _, id := range []string{"stable", "adapting", "needs_support", "needs_attention"} {
		if _, ok := b.zones[id]; !ok {
			return nil, fmt.Errorf("knowledge: wellness zone %q missing from %s", id, "wellness_zones.yaml")
		}
	}

	return b, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("knowledge: read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("knowledge: parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// EmotionByID resolves a taxonomy node at any level.
func (b *Base) EmotionByID(id string) (EmotionEntry, bool) {
	e, ok := b.emotions[id]
	return e, ok
}

// EmotionLabel returns the localized label for an emotion id, falling back to
// the id itself for unknown entries.
func (b *Base) EmotionLabel(id, lang string) string {
	if e, ok := b.emotions[id]; ok {
		if label := e.Label.In(lang); label != "" {
			return label
		}
	}
	return id
}

// Wheel returns the full taxonomy for prompt construction.
func (b *Base) Wheel() []Emotion {
	return b.wheel
}

// QuestionsFor picks the authored question set for the most specific emotion
// level available, falling back tertiary → secondary → primary → defaults.
func (b *Base) QuestionsFor(primaryID, secondaryID, tertiaryID string) QuestionSet {
	for _, id := range []string{tertiaryID, secondaryID, primaryID} {
		if id == "" {
			continue
		}
		set, ok := b.questions[id]
		if !ok {
			continue
		}
		if len(set.Open) > 0 || len(set.MultipleChoice) > 0 {
			return set
		}
	}
	return b.defaults
}

// DefaultQuestions returns the built-in question set.
func (b *Base) DefaultQuestions() QuestionSet {
	return b.defaults
}

// TipsByZone returns tips tagged for the zone.
func (b *Base) TipsByZone(zone conversation.WellnessZone) []Tip {
	return b.byZone[string(zone)]
}

// TipsByEmotion returns tips tagged for the emotion id.
func (b *Base) TipsByEmotion(emotionID string) []Tip {
	return b.byEmotion[emotionID]
}

// ZoneInfo returns display metadata for a zone.
func (b *Base) ZoneInfo(zone conversation.WellnessZone) (ZoneInfo, bool) {
	z, ok := b.zones[string(zone)]
	return z, ok
}
