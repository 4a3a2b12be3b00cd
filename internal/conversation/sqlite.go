package conversation

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists the conversation in a SQLite database. It keeps the
// whole-list Store contract: Save replaces the stored list in one
// transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load returns all messages in append order.
func (s *SQLiteStore) Load() ([]ChatMessage, error) {
	rows, err := s.db.Query(`SELECT id, role, text, timestamp FROM messages ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		var role string
		var ts time.Time
		if err := rows.Scan(&msg.ID, &role, &msg.Text, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = Role(role)
		msg.Timestamp = ts
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// Save replaces the stored conversation with the given list.
func (s *SQLiteStore) Save(messages []ChatMessage) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO messages (id, role, text, timestamp) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		if _, err := stmt.Exec(msg.ID, string(msg.Role), msg.Text, msg.Timestamp); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
