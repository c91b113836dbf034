// internal/db/store.go
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"modelarena/internal/arena"
	"modelarena/internal/chat"
	"modelarena/internal/rating"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		models TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		conversation_id TEXT NOT NULL REFERENCES conversations(id),
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);

	CREATE TABLE IF NOT EXISTS model_responses (
		message_id TEXT NOT NULL REFERENCES messages(id),
		position INTEGER NOT NULL,
		model_id TEXT NOT NULL,
		content TEXT NOT NULL,
		latency_ns INTEGER NOT NULL,
		token_count INTEGER NOT NULL,
		cost REAL NOT NULL,
		PRIMARY KEY (message_id, position)
	);

	CREATE TABLE IF NOT EXISTS battles (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		model_a TEXT NOT NULL,
		model_b TEXT NOT NULL,
		response_a TEXT NOT NULL,
		response_b TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS votes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		battle_id TEXT NOT NULL REFERENCES battles(id),
		winner_id TEXT NOT NULL,
		loser_id TEXT NOT NULL,
		draw INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_votes_battle ON votes(battle_id);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		user_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveConversation inserts a conversation or updates its title and models.
func (s *Store) SaveConversation(c chat.Conversation) error {
	modelsJSON, err := json.Marshal(c.Models)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO conversations (id, title, models, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, models = excluded.models,
		 updated_at = CURRENT_TIMESTAMP`,
		c.ID, c.Title, string(modelsJSON), c.CreatedAt,
	)
	return err
}

// AddMessage stores a message and its model responses.
func (s *Store) AddMessage(convID string, msg chat.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, convID, string(msg.Role), msg.Content, msg.Timestamp,
	); err != nil {
		return err
	}

	for i, r := range msg.Responses {
		if _, err := tx.Exec(
			`INSERT INTO model_responses (message_id, position, model_id, content, latency_ns, token_count, cost)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, i, r.ModelID, r.Content, int64(r.Latency), r.TokenCount, r.Cost,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, convID); err != nil {
		return err
	}

	return tx.Commit()
}

// Conversations loads every conversation with its messages, oldest first.
func (s *Store) Conversations() ([]chat.Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, title, models, created_at FROM conversations ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		var (
			c          chat.Conversation
			modelsJSON string
		)
		if err := rows.Scan(&c.ID, &c.Title, &modelsJSON, &c.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(modelsJSON), &c.Models); err != nil {
			return nil, fmt.Errorf("conversation %s models: %w", c.ID, err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range convs {
		msgs, err := s.Messages(convs[i].ID)
		if err != nil {
			return nil, err
		}
		convs[i].Messages = msgs
	}
	return convs, nil
}

// Messages retrieves all messages of a conversation in insertion order.
func (s *Store) Messages(convID string) ([]chat.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY seq`,
		convID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var (
			m    chat.Message
			role string
		)
		if err := rows.Scan(&m.ID, &role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		m.Role = chat.Role(role)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range messages {
		resps, err := s.responses(messages[i].ID)
		if err != nil {
			return nil, err
		}
		messages[i].Responses = resps
	}
	return messages, nil
}

func (s *Store) responses(messageID string) ([]chat.ModelResponse, error) {
	rows, err := s.db.Query(
		`SELECT model_id, content, latency_ns, token_count, cost
		 FROM model_responses WHERE message_id = ? ORDER BY position`,
		messageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.ModelResponse
	for rows.Next() {
		var (
			r       chat.ModelResponse
			latency int64
		)
		if err := rows.Scan(&r.ModelID, &r.Content, &latency, &r.TokenCount, &r.Cost); err != nil {
			return nil, err
		}
		r.Latency = time.Duration(latency)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveBattle stores a battle with both responses.
func (s *Store) SaveBattle(b arena.Battle) error {
	_, err := s.db.Exec(
		`INSERT INTO battles (id, prompt, model_a, model_b, response_a, response_b, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Prompt, b.Models[0], b.Models[1], b.Responses[0].Content, b.Responses[1].Content, b.CreatedAt,
	)
	return err
}

// SaveVote stores the outcome of a battle.
func (s *Store) SaveVote(battleID string, o rating.Outcome) error {
	_, err := s.db.Exec(
		`INSERT INTO votes (battle_id, winner_id, loser_id, draw) VALUES (?, ?, ?, ?)`,
		battleID, o.WinnerID, o.LoserID, o.Draw,
	)
	return err
}

// Outcomes returns every stored vote in the order it was cast.
func (s *Store) Outcomes() ([]rating.Outcome, error) {
	rows, err := s.db.Query(`SELECT winner_id, loser_id, draw FROM votes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rating.Outcome
	for rows.Next() {
		var o rating.Outcome
		if err := rows.Scan(&o.WinnerID, &o.LoserID, &o.Draw); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
