// Package conversation implements the turn-level orchestration of the
// four-stage reflective dialogue: risk screening, phase dispatch, external
// reasoning with deterministic fallbacks, and persistence of every exchange.
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arunalab/aruna/backend/internal/analysis/risk"
	"github.com/arunalab/aruna/backend/internal/analysis/wellness"
	"github.com/arunalab/aruna/backend/internal/knowledge"
	model "github.com/arunalab/aruna/backend/internal/model/conversation"
	"github.com/arunalab/aruna/backend/internal/service/reasoner"
	"github.com/arunalab/aruna/backend/internal/storage"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Reasoner is the budget-limited generator behind the two external call
// shapes. A nil Reasoner puts the service in template-only mode.
type Reasoner interface {
	DetectEmotion(ctx context.Context, story string) (reasoner.EmotionResult, error)
	GenerateNarrative(ctx context.Context, input reasoner.NarrativeInput) (reasoner.NarrativeResult, error)
}

// Config tunes the orchestration thresholds.
type Config struct {
	// StoryMinLength is the minimum accumulated story length before emotion
	// detection runs; shorter stories get a clarifying question.
	StoryMinLength int
	// TipCount is the number of coping tips selected at closing.
	TipCount int
	// SessionTTL bounds how long an idle session stays cached in memory.
	SessionTTL time.Duration
	// DefaultLanguage is used when a session is started without one.
	DefaultLanguage string
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		StoryMinLength:  50,
		TipCount:        3,
		SessionTTL:      30 * time.Minute,
		DefaultLanguage: "id",
	}
}

// EmotionMeta is the detection summary attached to a turn reply.
type EmotionMeta struct {
	Primary   string             `json:"primary"`
	Secondary string             `json:"secondary,omitempty"`
	Zone      model.WellnessZone `json:"zone"`
}

// Reply is the outcome of one processed turn.
type Reply struct {
	Response           string
	Phase              model.Phase
	SessionComplete    bool
	Escalation         bool
	Emotion            *EmotionMeta
	QuestionsCompleted int
}

// Status summarizes a session for polling clients.
type Status struct {
	Phase              model.Phase
	Zone               model.WellnessZone
	QuestionsCompleted int
	IsComplete         bool
}

// Service coordinates one consistent, auditable decision per turn. Turns for
// the same session id are serialized internally; sessions are independent.
type Service struct {
	store      storage.Store
	kb         *knowledge.Base
	classifier *risk.Classifier
	reasoner   Reasoner
	cfg        Config
	logger     *zap.Logger

	cache    *sessionCache
	handlers map[model.Phase]phaseHandler
}

// NewService wires the orchestrator. gen may be nil when no model backend is
// configured; every reasoner-backed step then uses its deterministic
// fallback.
func NewService(store storage.Store, kb *knowledge.Base, classifier *risk.Classifier, gen Reasoner, cfg Config, logger *zap.Logger) *Service {
	if cfg.StoryMinLength <= 0 {
		cfg = DefaultConfig()
	}

	s := &Service{
		store:      store,
		kb:         kb,
		classifier: classifier,
		reasoner:   gen,
		cfg:        cfg,
		logger:     logger.Named("conversation"),
		cache:      newSessionCache(cfg.SessionTTL),
	}
	s.handlers = map[model.Phase]phaseHandler{
		model.PhaseStory:               &storyHandler{s},
		model.PhaseLightReflection:     &reflectionHandler{s},
		model.PhaseReflectiveNarrative: &narrativeHandler{s},
		model.PhaseTipsClosing:         &tipsHandler{s},
		model.PhaseDone:                &doneHandler{s},
	}
	return s
}

// StartSession creates a session in the first phase and returns its id with
// the localized greeting. The greeting is logged as the first bot message.
func (s *Service) StartSession(ctx context.Context, userID, language string) (string, string, error) {
	lang := normalizeLanguage(language, s.cfg.DefaultLanguage)
	sess := model.NewSession(userID, lang)

	if err := s.store.CreateSession(ctx, sess.ToRecord()); err != nil {
		return "", "", err
	}

	greeting := fixedMessage(lang, "greeting")
	if err := s.store.AppendMessage(ctx, s.newMessage(sess, model.RoleBot, greeting, "text")); err != nil {
		return "", "", err
	}

	entry := s.cache.acquire(sess.ID)
	entry.sess = sess
	entry.release()

	s.logger.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID),
		zap.String("language", lang))

	return sess.ID, greeting, nil
}

// ProcessMessage runs one turn: risk screening first, then phase dispatch.
// The safety short-circuit is evaluated before any phase logic and cannot be
// skipped by any error path.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, text string) (Reply, error) {
	entry := s.cache.acquire(sessionID)
	defer entry.release()

	sess, err := s.loadLocked(ctx, sessionID, entry)
	if err != nil {
		return Reply{}, err
	}
	sess.Touch()

	assessment := s.classifier.Check(text)
	if len(assessment.Flags) > 0 {
		s.logger.Warn("risk flags detected",
			zap.String("session_id", sess.ID),
			zap.String("level", assessment.Level.String()),
			zap.Strings("flags", assessment.Flags))
	}

	switch assessment.Action {
	case risk.ActionEscalateImmediately:
		return s.escalate(ctx, sess, text, assessment)
	case risk.ActionRedirect:
		return s.safeReply(ctx, sess, text, "clinical_redirect")
	case risk.ActionDecline:
		return s.safeReply(ctx, sess, text, "inappropriate_decline")
	}

	handler := s.handlers[sess.Phase]
	reply, err := handler.handle(ctx, sess, text)
	if err != nil {
		var te *model.TransitionError
		if errors.As(err, &te) {
			// Logic error: log it, answer with a generic system reply, and
			// keep the session where it was.
			s.logger.Error("illegal phase transition",
				zap.String("session_id", sess.ID),
				zap.Error(te))
			reply = Reply{
				Response: fixedMessage(sess.Language, "system_error"),
				Phase:    sess.Phase,
			}
		} else {
			// A failed turn must not leave a mutated session cached; the
			// retry reloads the last committed record.
			s.cache.drop(sess.ID)
			return Reply{}, err
		}
	}

	if err := s.persistTurn(ctx, sess, text, reply); err != nil {
		s.cache.drop(sess.ID)
		return Reply{}, err
	}
	if sess.IsComplete() {
		s.cache.drop(sess.ID)
	}
	return reply, nil
}

// GetStatus reports the session's phase and reflection progress.
func (s *Service) GetStatus(ctx context.Context, sessionID string) (Status, error) {
	entry := s.cache.acquire(sessionID)
	defer entry.release()

	sess, err := s.loadLocked(ctx, sessionID, entry)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Phase:              sess.Phase,
		Zone:               sess.Zone,
		QuestionsCompleted: len(sess.Answers),
		IsComplete:         sess.IsComplete(),
	}, nil
}

// EndSession administratively forces a session into the terminal phase.
// This is the one path that bypasses the transition guards.
func (s *Service) EndSession(ctx context.Context, sessionID string) error {
	entry := s.cache.acquire(sessionID)
	defer entry.release()

	sess, err := s.loadLocked(ctx, sessionID, entry)
	if err != nil {
		return err
	}
	if sess.IsComplete() {
		return nil
	}

	s.logger.Info("session force-ended",
		zap.String("session_id", sess.ID),
		zap.String("from_phase", string(sess.Phase)))
	sess.Phase = model.PhaseDone
	sess.Touch()

	err = s.store.UpdateSession(ctx, sess.ToRecord())
	s.cache.drop(sess.ID)
	return err
}

// escalate is the safety override: zone forced by policy, fixed protective
// message, no phase logic. The pending turn is not applied to state.
func (s *Service) escalate(ctx context.Context, sess *model.Session, text string, assessment risk.Assessment) (Reply, error) {
	sess.Zone = wellness.Determine(string(sess.Zone), assessment, sess.Confidence)

	reply := Reply{
		Response:           fixedMessage(sess.Language, "escalation"),
		Phase:              sess.Phase,
		Escalation:         true,
		QuestionsCompleted: len(sess.Answers),
	}
	if err := s.persistEscalation(ctx, sess, text, reply.Response); err != nil {
		s.cache.drop(sess.ID)
		return Reply{}, err
	}
	return reply, nil
}

// safeReply answers redirect/decline with the fixed text, without advancing
// phase or story.
func (s *Service) safeReply(ctx context.Context, sess *model.Session, text, key string) (Reply, error) {
	reply := Reply{
		Response:           fixedMessage(sess.Language, key),
		Phase:              sess.Phase,
		QuestionsCompleted: len(sess.Answers),
	}
	if err := s.persistTurn(ctx, sess, text, reply); err != nil {
		s.cache.drop(sess.ID)
		return Reply{}, err
	}
	return reply, nil
}

func (s *Service) loadLocked(ctx context.Context, sessionID string, entry *cacheEntry) (*model.Session, error) {
	if entry.sess != nil {
		return entry.sess, nil
	}
	rec, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	sess := model.FromRecord(rec)
	entry.sess = sess
	return sess, nil
}

// persistTurn writes the user message, the bot reply, and the mutated
// session. The turn is not complete until all three writes succeed.
func (s *Service) persistTurn(ctx context.Context, sess *model.Session, userText string, reply Reply) error {
	if err := s.store.AppendMessage(ctx, s.newMessage(sess, model.RoleUser, userText, "text")); err != nil {
		return err
	}
	if err := s.store.AppendMessage(ctx, s.newMessage(sess, model.RoleBot, reply.Response, "text")); err != nil {
		return err
	}
	return s.store.UpdateSession(ctx, sess.ToRecord())
}

func (s *Service) persistEscalation(ctx context.Context, sess *model.Session, userText, response string) error {
	if err := s.store.AppendMessage(ctx, s.newMessage(sess, model.RoleUser, userText, "text")); err != nil {
		return err
	}
	if err := s.store.AppendMessage(ctx, s.newMessage(sess, model.RoleBot, response, "escalation")); err != nil {
		return err
	}
	return s.store.UpdateSession(ctx, sess.ToRecord())
}

func (s *Service) newMessage(sess *model.Session, role model.Role, content, kind string) model.Message {
	return model.Message{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Role:      role,
		Content:   content,
		Phase:     sess.Phase,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
}

func normalizeLanguage(lang, fallback string) string {
	switch lang {
	case "id", "en":
		return lang
	}
	return fallback
}
