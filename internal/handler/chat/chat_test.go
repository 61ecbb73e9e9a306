package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/arunalab/aruna/backend/internal/analysis/risk"
	"github.com/arunalab/aruna/backend/internal/knowledge"
	conversation "github.com/arunalab/aruna/backend/internal/service/conversation"
	memorystore "github.com/arunalab/aruna/backend/internal/storage/memory"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"emotion_wheel.yaml": `
primary_emotions:
  - id: sad
    label: {en: Sad, id: Sedih}
`,
		"reflection_questions.yaml": `
defaults:
  open:
    - id: d1
      question: {en: "What happened?"}
    - id: d2
      question: {en: "What keeps coming back?"}
    - id: d3
      question: {en: "What would you tell a friend?"}
  multiple_choice:
    - id: d4
      question: {en: "How often?"}
      options: [{en: Often}, {en: Rarely}]
    - id: d5
      question: {en: "Who do you tell?"}
      options: [{en: Family}, {en: Friends}]
`,
		"coping_tips.yaml": `
tips:
  - id: tip1
    category: relaxation
    zones: [stable, adapting, needs_support, needs_attention]
    name: {en: Breathe}
    description: {en: Slow breaths}
`,
		"wellness_zones.yaml": `
zones:
  - id: stable
    label: {en: Stable}
    description: {en: Steady}
  - id: adapting
    label: {en: Adapting}
    description: {en: Adjusting}
  - id: needs_support
    label: {en: Needs Support}
    description: {en: Heavy}
  - id: needs_attention
    label: {en: Needs Attention}
    description: {en: Urgent}
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	kb, err := knowledge.Load(dir)
	if err != nil {
		t.Fatalf("load knowledge: %v", err)
	}

	svc := conversation.NewService(memorystore.NewStore(), kb, risk.NewClassifier(), nil,
		conversation.DefaultConfig(), zap.NewNop())
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func startSession(t *testing.T, r *chi.Mux) string {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"userId": "u1", "language": "en"})
	req := httptest.NewRequest(http.MethodPost, "/chat/start", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if body.SessionID == "" {
		t.Fatal("empty session id")
	}
	return body.SessionID
}

func TestStartSessionMissingUserID(t *testing.T) {
	r := setupRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/chat/start", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestMessageFlow(t *testing.T) {
	r := setupRouter(t)
	sessionID := startSession(t, r)

	payload, _ := json.Marshal(map[string]string{"message": "today was a strange day at school and I cannot stop thinking about what happened with my friend"})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/chat/%s/message", sessionID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Response string `json:"response"`
		Phase    string `json:"phase"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode message response: %v", err)
	}
	if body.Phase != "light_reflection" {
		t.Fatalf("phase = %s", body.Phase)
	}
	if body.Response == "" {
		t.Fatal("empty response text")
	}
}

func TestMessageUnknownSession(t *testing.T) {
	r := setupRouter(t)

	payload, _ := json.Marshal(map[string]string{"message": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/chat/nope/message", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestMessageEmptyBody(t *testing.T) {
	r := setupRouter(t)
	sessionID := startSession(t, r)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/chat/%s/message", sessionID), bytes.NewReader([]byte(`{"message":""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStatusAndEnd(t *testing.T) {
	r := setupRouter(t)
	sessionID := startSession(t, r)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/chat/%s/status", sessionID), nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", resp.Code)
	}
	var status struct {
		Phase      string `json:"phase"`
		IsComplete bool   `json:"isComplete"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Phase != "story" || status.IsComplete {
		t.Fatalf("unexpected status: %+v", status)
	}

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/chat/%s/end", sessionID), nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("end: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/chat/%s/status", sessionID), nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if err := json.Unmarshal(resp.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.IsComplete {
		t.Fatal("session not complete after end")
	}
}

func TestEndUnknownSession(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/chat/nope/end", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
