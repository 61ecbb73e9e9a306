// Package sqlite implements the Store contract on an embedded SQLite
// database via the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arunalab/aruna/backend/internal/model/conversation"
	"github.com/arunalab/aruna/backend/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	phase         TEXT NOT NULL,
	zone          TEXT NOT NULL,
	record        TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	last_activity TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	phase      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);

CREATE TABLE IF NOT EXISTS emotion_logs (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	primary_emotion   TEXT NOT NULL,
	secondary_emotion TEXT,
	tertiary_emotion  TEXT,
	keywords   TEXT,
	confidence TEXT NOT NULL,
	zone       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS reflections (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	answers    TEXT NOT NULL,
	narrative  TEXT NOT NULL,
	tip_ids    TEXT,
	created_at TIMESTAMP NOT NULL
);
`

// Store persists sessions and audit records in SQLite. The full session
// record is stored as a JSON document next to the indexed columns.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The driver allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateSession(ctx context.Context, rec conversation.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, phase, zone, record, created_at, last_activity)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Phase, rec.Zone, string(doc), rec.CreatedAt, rec.LastActivity)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (conversation.Record, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM sessions WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return conversation.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return conversation.Record{}, fmt.Errorf("query session: %w", err)
	}

	var rec conversation.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return conversation.Record{}, fmt.Errorf("decode session record: %w", err)
	}
	return rec, nil
}

func (s *Store) UpdateSession(ctx context.Context, rec conversation.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET phase = ?, zone = ?, record = ?, last_activity = ? WHERE id = ?`,
		rec.Phase, rec.Zone, string(doc), rec.LastActivity, rec.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) AppendMessage(ctx context.Context, msg conversation.Message) error {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, role, content, phase, kind, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Content, msg.Phase, msg.Kind, createdAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *Store) AppendEmotionLog(ctx context.Context, entry conversation.EmotionLog) error {
	keywords, err := json.Marshal(entry.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO emotion_logs
		 (id, session_id, primary_emotion, secondary_emotion, tertiary_emotion, keywords, confidence, zone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SessionID, entry.PrimaryEmotion, entry.SecondaryEmotion,
		entry.TertiaryEmotion, string(keywords), entry.Confidence, entry.Zone, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert emotion log: %w", err)
	}
	return nil
}

func (s *Store) AppendReflection(ctx context.Context, ref conversation.Reflection) error {
	answers, err := json.Marshal(ref.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	tipIDs, err := json.Marshal(ref.TipIDs)
	if err != nil {
		return fmt.Errorf("encode tip ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reflections (id, session_id, answers, narrative, tip_ids, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ref.ID, ref.SessionID, string(answers), ref.Narrative, string(tipIDs), ref.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reflection: %w", err)
	}
	return nil
}
