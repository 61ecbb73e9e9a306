// Package reasoner wraps the external language model behind the two call
// shapes the conversation flow needs: emotion detection and narrative
// synthesis. Calls are retried with exponential backoff and every result is
// validated against the knowledge base before it reaches session state.
package reasoner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/arunalab/aruna/backend/internal/knowledge"
	"github.com/arunalab/aruna/backend/internal/model/conversation"
)

// ErrExhausted signals that every attempt against the model failed. Callers
// recover with deterministic fallbacks; the error never reaches the end user.
var ErrExhausted = errors.New("reasoner: attempts exhausted")

// Config bounds the retry/backoff behavior of a single logical call.
type Config struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	CallTimeout time.Duration
}

// DefaultConfig mirrors the documented contract: 3 attempts, exponential
// backoff base 2s capped at 10s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BackoffBase: 2 * time.Second,
		BackoffCap:  10 * time.Second,
		CallTimeout: 30 * time.Second,
	}
}

// EmotionResult is the parsed emotion detection output.
type EmotionResult struct {
	Primary    string
	Secondary  string
	Tertiary   string
	Keywords   []string
	Confidence string
	ZoneHint   string
	Reasoning  string
}

// NarrativeInput carries everything the narrative call needs.
type NarrativeInput struct {
	Story     string
	Primary   string
	Secondary string
	Tertiary  string
	Zone      conversation.WellnessZone
	QA        []conversation.QAPair
	Language  string
}

// NarrativeResult is the parsed narrative synthesis output.
type NarrativeResult struct {
	Narrative string
	ZoneHint  string
	Insights  []string
}

// Service drives the compiled prompt→model chain.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	kb     *knowledge.Base
	cfg    Config
	logger *zap.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewService compiles the generation chain once. chatModel comes from the
// configured ark backend.
func NewService(ctx context.Context, chatModel model.ChatModel, kb *knowledge.Base, cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reasoner chain: %w", err)
	}

	return &Service{
		chain:  runnable,
		kb:     kb,
		cfg:    cfg,
		logger: logger.Named("reasoner"),
		sleep:  sleepCtx,
	}, nil
}

// Generate runs one prompt through the chain, retrying transient failures
// with exponential backoff. Returns ErrExhausted once every attempt failed.
func (s *Service) Generate(ctx context.Context, promptText, systemInstruction string) (string, error) {
	input := map[string]any{
		"system": systemInstruction,
		"prompt": promptText,
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := s.sleep(ctx, s.backoff(attempt)); err != nil {
				return "", err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		msg, err := s.chain.Invoke(callCtx, input)
		cancel()
		if err != nil {
			lastErr = err
			s.logger.Warn("generation attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			lastErr = errors.New("empty model response")
			continue
		}
		return strings.TrimSpace(msg.Content), nil
	}

	return "", fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}

// backoff returns the delay before the given attempt (1-based retries).
func (s *Service) backoff(attempt int) time.Duration {
	d := s.cfg.BackoffBase << (attempt - 1)
	if d > s.cfg.BackoffCap {
		return s.cfg.BackoffCap
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DetectEmotion runs the first call shape: classify the accumulated story
// against the emotion taxonomy. Parse failures degrade to a low-confidence
// default rather than an error; only transport exhaustion is returned.
func (s *Service) DetectEmotion(ctx context.Context, story string) (EmotionResult, error) {
	promptText, err := emotionDetectionPrompt(story, s.kb.Wheel())
	if err != nil {
		return EmotionResult{}, err
	}

	raw, err := s.Generate(ctx, promptText, emotionSystemInstruction)
	if err != nil {
		return EmotionResult{}, err
	}

	payload, err := extractJSON[emotionPayload](raw)
	if err != nil {
		s.logger.Warn("emotion response not parseable, using default", zap.Error(err))
		return defaultEmotionResult(), nil
	}

	return s.validateEmotion(payload), nil
}

func defaultEmotionResult() EmotionResult {
	return EmotionResult{
		Primary:    "sad",
		Confidence: string(conversation.ConfidenceLow),
		ZoneHint:   string(conversation.ZoneAdapting),
	}
}

// validateEmotion corrects unknown taxonomy ids to safe values: an unknown
// primary becomes "sad", unknown secondary/tertiary are cleared.
func (s *Service) validateEmotion(p emotionPayload) EmotionResult {
	result := EmotionResult{
		Primary:    strings.TrimSpace(p.PrimaryEmotion),
		Secondary:  strings.TrimSpace(p.SecondaryEmotion),
		Tertiary:   strings.TrimSpace(p.TertiaryEmotion),
		Keywords:   p.Keywords,
		Confidence: string(conversation.ParseConfidence(p.Confidence)),
		ZoneHint:   p.WellnessZone,
		Reasoning:  p.Reasoning,
	}

	if _, ok := s.kb.EmotionByID(result.Primary); !ok {
		s.logger.Warn("unknown primary emotion from model", zap.String("id", result.Primary))
		result.Primary = "sad"
	}
	if result.Secondary != "" {
		if _, ok := s.kb.EmotionByID(result.Secondary); !ok {
			s.logger.Warn("unknown secondary emotion from model", zap.String("id", result.Secondary))
			result.Secondary = ""
		}
	}
	if result.Tertiary != "" {
		if _, ok := s.kb.EmotionByID(result.Tertiary); !ok {
			s.logger.Warn("unknown tertiary emotion from model", zap.String("id", result.Tertiary))
			result.Tertiary = ""
		}
	}

	if _, ok := conversation.ParseZone(result.ZoneHint); !ok {
		result.ZoneHint = string(conversation.ZoneAdapting)
	}

	return result
}

// GenerateNarrative runs the second call shape: synthesize the reflective
// narrative from the story, the detected emotion, and the answered pairs. A
// parse failure keeps the raw text as the narrative.
func (s *Service) GenerateNarrative(ctx context.Context, input NarrativeInput) (NarrativeResult, error) {
	promptText := narrativePrompt(input, s.kb)

	raw, err := s.Generate(ctx, promptText, narrativeSystemInstruction)
	if err != nil {
		return NarrativeResult{}, err
	}

	payload, err := extractJSON[narrativePayload](raw)
	if err != nil {
		s.logger.Warn("narrative response not parseable, keeping raw text", zap.Error(err))
		return NarrativeResult{
			Narrative: raw,
			ZoneHint:  string(input.Zone),
		}, nil
	}

	result := NarrativeResult{
		Narrative: strings.TrimSpace(payload.Narrative),
		ZoneHint:  payload.WellnessZone,
		Insights:  payload.Insights,
	}
	if result.Narrative == "" {
		result.Narrative = raw
	}
	return result, nil
}
