package conversation

import "testing"

func readySession() *Session {
	s := NewSession("user-1", "en")
	s.Story = "Something long enough to move past the story stage of the dialogue."
	s.PrimaryEmotion = "sad"
	return s
}

func TestTransitionFullPath(t *testing.T) {
	s := readySession()
	s.SetQuestions(fiveQuestions())
	for i := 0; i < ReflectionTarget; i++ {
		q := s.CurrentQuestion()
		s.AddReflectionAnswer(q.Text, "answer")
	}
	s.SetNarrative("a narrative", nil)

	want := []Phase{PhaseLightReflection, PhaseReflectiveNarrative, PhaseTipsClosing, PhaseDone}
	for _, expected := range want {
		got, err := Transition(s)
		if err != nil {
			t.Fatalf("transition to %s: %v", expected, err)
		}
		if got != expected {
			t.Fatalf("expected phase %s, got %s", expected, got)
		}
	}
}

func TestTransitionBlockedWithoutStory(t *testing.T) {
	s := NewSession("user-1", "en")
	if _, err := Transition(s); err == nil {
		t.Fatal("expected transition to fail with empty story")
	}
	if s.Phase != PhaseStory {
		t.Fatalf("failed transition mutated phase to %s", s.Phase)
	}
}

func TestTransitionBlockedWithoutEmotion(t *testing.T) {
	s := NewSession("user-1", "en")
	s.Story = "long enough story text to satisfy the length check easily here"
	if _, err := Transition(s); err == nil {
		t.Fatal("expected transition to fail without a primary emotion")
	}
}

func TestTransitionBlockedMidReflection(t *testing.T) {
	s := readySession()
	s.Phase = PhaseLightReflection
	s.SetQuestions(fiveQuestions())
	s.AddReflectionAnswer("q1", "a1")
	s.AddReflectionAnswer("q2", "a2")

	if _, err := Transition(s); err == nil {
		t.Fatal("expected transition to fail with incomplete answers")
	}
	if s.Phase != PhaseLightReflection {
		t.Fatalf("failed transition mutated phase to %s", s.Phase)
	}
}

func TestTransitionTerminalPhase(t *testing.T) {
	s := readySession()
	s.Phase = PhaseDone
	if _, err := Transition(s); err == nil {
		t.Fatal("expected transition from terminal phase to fail")
	}
}

func TestParsePhase(t *testing.T) {
	if p, ok := ParsePhase("light_reflection"); !ok || p != PhaseLightReflection {
		t.Fatalf("ParsePhase(light_reflection) = %s, %v", p, ok)
	}
	if _, ok := ParsePhase("bercerita"); ok {
		t.Fatal("expected unknown phase to be rejected")
	}
}

func fiveQuestions() []Question {
	return []Question{
		{ID: "q1", Text: "one", Kind: QuestionOpen},
		{ID: "q2", Text: "two", Kind: QuestionOpen},
		{ID: "q3", Text: "three", Kind: QuestionOpen},
		{ID: "q4", Text: "four", Kind: QuestionMC, Options: []string{"a", "b"}},
		{ID: "q5", Text: "five", Kind: QuestionMC, Options: []string{"c", "d"}},
	}
}
