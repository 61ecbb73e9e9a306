// Package memory provides an in-process Store for tests and single-node
// development runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/arunalab/aruna/backend/internal/model/conversation"
	"github.com/arunalab/aruna/backend/internal/storage"
)

// Store keeps everything in mutex-guarded maps.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]conversation.Record
	messages    map[string][]conversation.Message
	emotionLogs map[string][]conversation.EmotionLog
	reflections map[string][]conversation.Reflection
}

// NewStore bootstraps an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sessions:    make(map[string]conversation.Record),
		messages:    make(map[string][]conversation.Message),
		emotionLogs: make(map[string][]conversation.EmotionLog),
		reflections: make(map[string][]conversation.Reflection),
	}
}

func (s *Store) CreateSession(_ context.Context, rec conversation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[rec.ID]; ok {
		return fmt.Errorf("session %s already exists", rec.ID)
	}
	s.sessions[rec.ID] = rec
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (conversation.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return conversation.Record{}, storage.ErrNotFound
	}
	return rec, nil
}

func (s *Store) UpdateSession(_ context.Context, rec conversation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[rec.ID]; !ok {
		return storage.ErrNotFound
	}
	s.sessions[rec.ID] = rec
	return nil
}

func (s *Store) AppendMessage(_ context.Context, msg conversation.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

func (s *Store) AppendEmotionLog(_ context.Context, entry conversation.EmotionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emotionLogs[entry.SessionID] = append(s.emotionLogs[entry.SessionID], entry)
	return nil
}

func (s *Store) AppendReflection(_ context.Context, ref conversation.Reflection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reflections[ref.SessionID] = append(s.reflections[ref.SessionID], ref)
	return nil
}

// Messages returns a copy of the logged messages for a session. Test helper.
func (s *Store) Messages(sessionID string) []conversation.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]conversation.Message, len(s.messages[sessionID]))
	copy(out, s.messages[sessionID])
	return out
}

// EmotionLogs returns a copy of the emotion audit rows for a session.
func (s *Store) EmotionLogs(sessionID string) []conversation.EmotionLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]conversation.EmotionLog, len(s.emotionLogs[sessionID]))
	copy(out, s.emotionLogs[sessionID])
	return out
}

// Reflections returns a copy of the reflection records for a session.
func (s *Store) Reflections(sessionID string) []conversation.Reflection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]conversation.Reflection, len(s.reflections[sessionID]))
	copy(out, s.reflections[sessionID])
	return out
}
