// Package storage defines the persistence contract for sessions and their
// append-only audit records.
package storage

import (
	"context"
	"errors"

	"github.com/arunalab/aruna/backend/internal/model/conversation"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("storage: session not found")

// Store is the durable home of session records, the message log, and the
// derived audit artifacts. Message, emotion-log, and reflection writes are
// append-only.
type Store interface {
	CreateSession(ctx context.Context, rec conversation.Record) error
	GetSession(ctx context.Context, id string) (conversation.Record, error)
	UpdateSession(ctx context.Context, rec conversation.Record) error

	AppendMessage(ctx context.Context, msg conversation.Message) error
	AppendEmotionLog(ctx context.Context, entry conversation.EmotionLog) error
	AppendReflection(ctx context.Context, ref conversation.Reflection) error
}
