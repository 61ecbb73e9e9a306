package conversation

import "fmt"

// Phase is one stage of the fixed five-stage dialogue flow.
type Phase string

const (
	PhaseStory               Phase = "story"
	PhaseLightReflection     Phase = "light_reflection"
	PhaseReflectiveNarrative Phase = "reflective_narrative"
	PhaseTipsClosing         Phase = "tips_closing"
	PhaseDone                Phase = "done"
)

// ParsePhase validates a stored phase value.
func ParsePhase(raw string) (Phase, bool) {
	switch Phase(raw) {
	case PhaseStory, PhaseLightReflection, PhaseReflectiveNarrative, PhaseTipsClosing, PhaseDone:
		return Phase(raw), true
	}
	return "", false
}

// nextPhase holds the directed edges of the flow. Done is terminal.
var nextPhase = map[Phase]Phase{
	PhaseStory:               PhaseLightReflection,
	PhaseLightReflection:     PhaseReflectiveNarrative,
	PhaseReflectiveNarrative: PhaseTipsClosing,
	PhaseTipsClosing:         PhaseDone,
}

// TransitionError reports an illegal phase transition attempt. It indicates a
// logic error in the caller and is never shown verbatim to the end user.
type TransitionError struct {
	From   Phase
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot leave phase %s: %s", e.From, e.Reason)
}

// CanTransition reports whether the session may leave its current phase.
// It is pure: no session state is touched.
func CanTransition(s *Session) (bool, string) {
	switch s.Phase {
	case PhaseStory:
		if s.Story == "" {
			return false, "story is empty"
		}
		if s.PrimaryEmotion == "" {
			return false, "emotion not yet detected"
		}
		return true, "ready for reflection"
	case PhaseLightReflection:
		if !s.IsReflectionComplete() {
			return false, fmt.Sprintf("reflection incomplete (%d/%d answers)", len(s.Answers), ReflectionTarget)
		}
		return true, "reflection complete"
	case PhaseReflectiveNarrative:
		if s.Narrative == "" {
			return false, "narrative not yet generated"
		}
		return true, "narrative ready"
	case PhaseTipsClosing:
		return true, "ready to close"
	case PhaseDone:
		return false, "session already complete"
	}
	return false, "unknown phase"
}

// Transition advances the session to the next phase, or fails with a
// TransitionError when the exit guard is not satisfied. The phase is mutated
// only on success.
func Transition(s *Session) (Phase, error) {
	ok, reason := CanTransition(s)
	if !ok {
		return s.Phase, &TransitionError{From: s.Phase, Reason: reason}
	}

	next, ok := nextPhase[s.Phase]
	if !ok {
		return s.Phase, &TransitionError{From: s.Phase, Reason: "no next phase"}
	}

	s.Phase = next
	return next, nil
}
