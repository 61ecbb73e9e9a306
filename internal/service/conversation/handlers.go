package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arunalab/aruna/backend/internal/analysis/wellness"
	"github.com/arunalab/aruna/backend/internal/knowledge"
	model "github.com/arunalab/aruna/backend/internal/model/conversation"
	"github.com/arunalab/aruna/backend/internal/service/reasoner"
)

// phaseHandler processes one turn for the phase it owns. Handlers mutate the
// session; the service persists it afterwards.
type phaseHandler interface {
	handle(ctx context.Context, sess *model.Session, input string) (Reply, error)
}

// storyHandler accumulates the user's story until it is substantial enough
// to run emotion detection, then opens the reflection stage.
type storyHandler struct{ s *Service }

func (h *storyHandler) handle(ctx context.Context, sess *model.Session, input string) (Reply, error) {
	sess.RecordStory(input)

	if len(sess.Story) < h.s.cfg.StoryMinLength {
		return Reply{
			Response: fixedMessage(sess.Language, "clarifying"),
			Phase:    sess.Phase,
		}, nil
	}

	det, zone := h.s.detectEmotion(ctx, sess)
	sess.SetDetectedEmotion(det)
	sess.Zone = zone

	if err := h.s.store.AppendEmotionLog(ctx, model.EmotionLog{
		ID:               uuid.NewString(),
		SessionID:        sess.ID,
		PrimaryEmotion:   sess.PrimaryEmotion,
		SecondaryEmotion: sess.SecondaryEmotion,
		TertiaryEmotion:  sess.TertiaryEmotion,
		Keywords:         sess.Keywords,
		Confidence:       sess.Confidence,
		Zone:             sess.Zone,
		CreatedAt:        time.Now().UTC(),
	}); err != nil {
		return Reply{}, err
	}

	sess.SetQuestions(h.s.buildQuestions(sess))
	if _, err := model.Transition(sess); err != nil {
		return Reply{}, err
	}

	first := sess.CurrentQuestion()
	resp := fixedMessage(sess.Language, "to_reflection") + "\n\n" + questionMessage(*first, 1, sess.Language)
	return Reply{
		Response: resp,
		Phase:    sess.Phase,
		Emotion: &EmotionMeta{
			Primary:   sess.PrimaryEmotion,
			Secondary: sess.SecondaryEmotion,
			Zone:      sess.Zone,
		},
	}, nil
}

// reflectionHandler records the answer to the current question and either
// asks the next one or, after the last answer, runs the closing sequence in
// the same turn.
type reflectionHandler struct{ s *Service }

func (h *reflectionHandler) handle(ctx context.Context, sess *model.Session, input string) (Reply, error) {
	current := sess.CurrentQuestion()
	if current == nil {
		// Question set exhausted without enough answers.
		return Reply{
			Response:           fixedMessage(sess.Language, "system_error"),
			Phase:              sess.Phase,
			QuestionsCompleted: len(sess.Answers),
		}, nil
	}

	sess.AddReflectionAnswer(current.Text, mapAnswer(input, *current))

	if !sess.IsReflectionComplete() {
		next := sess.CurrentQuestion()
		return Reply{
			Response:           questionMessage(*next, len(sess.Answers)+1, sess.Language),
			Phase:              sess.Phase,
			QuestionsCompleted: len(sess.Answers),
		}, nil
	}

	if _, err := model.Transition(sess); err != nil {
		return Reply{}, err
	}
	h.s.generateNarrative(ctx, sess)
	prefix := fixedMessage(sess.Language, "to_narrative") + "\n\n" + sess.Narrative
	return h.s.closeOut(ctx, sess, prefix)
}

// narrativeHandler covers turns arriving while the session sits in the
// narrative phase, e.g. after a restart interrupted the closing sequence.
type narrativeHandler struct{ s *Service }

func (h *narrativeHandler) handle(ctx context.Context, sess *model.Session, _ string) (Reply, error) {
	if sess.Narrative == "" {
		h.s.generateNarrative(ctx, sess)
	}
	prefix := fixedMessage(sess.Language, "to_narrative") + "\n\n" + sess.Narrative
	return h.s.closeOut(ctx, sess, prefix)
}

// tipsHandler acknowledges the closing turn and completes the session.
type tipsHandler struct{ s *Service }

func (h *tipsHandler) handle(ctx context.Context, sess *model.Session, _ string) (Reply, error) {
	if _, err := model.Transition(sess); err != nil {
		return Reply{}, err
	}
	return Reply{
		Response:           fixedMessage(sess.Language, "closing_ack"),
		Phase:              sess.Phase,
		SessionComplete:    true,
		QuestionsCompleted: len(sess.Answers),
	}, nil
}

// doneHandler answers turns on a completed session without mutating it.
type doneHandler struct{ s *Service }

func (h *doneHandler) handle(_ context.Context, sess *model.Session, _ string) (Reply, error) {
	return Reply{
		Response:           fixedMessage(sess.Language, "done"),
		Phase:              sess.Phase,
		SessionComplete:    true,
		QuestionsCompleted: len(sess.Answers),
	}, nil
}

// closeOut runs narrative → tips → done in one turn: selects the tips,
// records the reflection audit row, and composes the combined reply.
func (s *Service) closeOut(ctx context.Context, sess *model.Session, prefix string) (Reply, error) {
	if _, err := model.Transition(sess); err != nil {
		return Reply{}, err
	}

	tips := selectTips(s.kb, sess.Zone, sess.PrimaryEmotion, s.cfg.TipCount)
	sess.SelectedTipIDs = tipIDs(tips)

	if err := s.store.AppendReflection(ctx, model.Reflection{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Answers:   append([]model.QAPair(nil), sess.Answers...),
		Narrative: sess.Narrative,
		TipIDs:    append([]string(nil), sess.SelectedTipIDs...),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return Reply{}, err
	}

	body := prefix +
		"\n\n" + fixedMessage(sess.Language, "to_tips") +
		"\n\n" + tipsMessage(tips, sess.Language) +
		"\n\n" + closingMessage(sess.Zone, sess.Language)

	if _, err := model.Transition(sess); err != nil {
		return Reply{}, err
	}

	return Reply{
		Response:        body,
		Phase:           sess.Phase,
		SessionComplete: true,
		Emotion: &EmotionMeta{
			Primary:   sess.PrimaryEmotion,
			Secondary: sess.SecondaryEmotion,
			Zone:      sess.Zone,
		},
		QuestionsCompleted: len(sess.Answers),
	}, nil
}

// detectEmotion runs the first reasoner call when the budget and backend
// allow it, then fuses the zone hint with the accumulated story's risk
// signals. Any failure degrades to the fixed fallback detection.
func (s *Service) detectEmotion(ctx context.Context, sess *model.Session) (model.Detection, model.WellnessZone) {
	storyRisk := s.classifier.Check(sess.Story)

	det := model.Detection{
		Primary:    "sad",
		Confidence: model.ConfidenceLow,
	}
	hint := string(model.ZoneAdapting)

	if s.reasoner != nil && sess.CanCallReasoner() {
		res, err := s.reasoner.DetectEmotion(ctx, sess.Story)
		if err != nil {
			s.logger.Warn("emotion detection failed, using fallback",
				zap.String("session_id", sess.ID),
				zap.Error(err))
		} else {
			sess.IncrementReasonerCall()
			det = model.Detection{
				Primary:    res.Primary,
				Secondary:  res.Secondary,
				Tertiary:   res.Tertiary,
				Keywords:   res.Keywords,
				Confidence: model.ParseConfidence(res.Confidence),
			}
			hint = res.ZoneHint
		}
	}

	return det, wellness.Determine(hint, storyRisk, det.Confidence)
}

// generateNarrative spends the second reasoner call when possible and falls
// back to the deterministic template otherwise. The zone may be re-fused
// from the narrative's hint.
func (s *Service) generateNarrative(ctx context.Context, sess *model.Session) {
	if s.reasoner != nil && sess.CanCallReasoner() {
		res, err := s.reasoner.GenerateNarrative(ctx, reasoner.NarrativeInput{
			Story:     sess.Story,
			Primary:   sess.PrimaryEmotion,
			Secondary: sess.SecondaryEmotion,
			Tertiary:  sess.TertiaryEmotion,
			Zone:      sess.Zone,
			QA:        sess.Answers,
			Language:  sess.Language,
		})
		if err == nil {
			sess.IncrementReasonerCall()
			sess.SetNarrative(res.Narrative, res.Insights)
			storyRisk := s.classifier.Check(sess.Story)
			sess.Zone = wellness.Determine(res.ZoneHint, storyRisk, sess.Confidence)
			return
		}
		s.logger.Warn("narrative generation failed, using template",
			zap.String("session_id", sess.ID),
			zap.Error(err))
	}

	sess.SetNarrative(templateNarrative(sess, s.kb), nil)
}

// buildQuestions assembles the per-session reflection set: three open
// questions and two multiple-choice ones, most specific emotion level first,
// padded from the defaults when an authored set is short.
func (s *Service) buildQuestions(sess *model.Session) []model.Question {
	set := s.kb.QuestionsFor(sess.PrimaryEmotion, sess.SecondaryEmotion, sess.TertiaryEmotion)
	defaults := s.kb.DefaultQuestions()

	open := pickQuestions(set.Open, defaults.Open, 3)
	mc := pickQuestions(set.MultipleChoice, defaults.MultipleChoice, 2)

	questions := make([]model.Question, 0, 5)
	for i, q := range open {
		questions = append(questions, model.Question{
			ID:   fmt.Sprintf("open_%d", i+1),
			Text: q.Question.In(sess.Language),
			Kind: model.QuestionOpen,
		})
	}
	for i, q := range mc {
		opts := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			opts = append(opts, o.In(sess.Language))
		}
		questions = append(questions, model.Question{
			ID:      fmt.Sprintf("mc_%d", i+1),
			Text:    q.Question.In(sess.Language),
			Kind:    model.QuestionMC,
			Options: opts,
		})
	}
	return questions
}

func pickQuestions(primary, fallback []knowledge.Question, n int) []knowledge.Question {
	out := make([]knowledge.Question, 0, n)
	out = append(out, primary...)
	if len(out) > n {
		out = out[:n]
	}
	for _, q := range fallback {
		if len(out) >= n {
			break
		}
		seen := false
		for _, have := range out {
			if have.ID == q.ID {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, q)
		}
	}
	return out
}

// mapAnswer resolves a multiple-choice reply to its option text: a 1-based
// number, a case-insensitive substring match in either direction, or the
// verbatim input. Open answers pass through trimmed.
func mapAnswer(input string, q model.Question) string {
	trimmed := strings.TrimSpace(input)
	if q.Kind != model.QuestionMC {
		return trimmed
	}

	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1]
	}

	lower := strings.ToLower(trimmed)
	for _, opt := range q.Options {
		optLower := strings.ToLower(opt)
		if strings.Contains(optLower, lower) || strings.Contains(lower, optLower) {
			return opt
		}
	}
	return trimmed
}
