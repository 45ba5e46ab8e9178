package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/brightlisting/rewriter/internal/storage"
)

// Store is a SQLite implementation of CreditLedger and RecordStore.
type Store struct {
	db *sql.DB
}

var (
	_ storage.CreditLedger = (*Store)(nil)
	_ storage.RecordStore  = (*Store)(nil)
)

// New creates a new SQLite store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS credits (
			user_id TEXT PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			reserved INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rewrites (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			address TEXT NOT NULL,
			status TEXT NOT NULL,
			error_type TEXT,
			prompt_tokens INTEGER,
			duration_ns INTEGER,
			variations TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rewrites_user ON rewrites(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rewrites_status ON rewrites(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// CheckAndReserve moves one credit from balance to reserved if available.
// Returns the settled balance after the reservation.
func (s *Store) CheckAndReserve(ctx context.Context, userID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT balance FROM credits WHERE user_id = ?`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, storage.ErrInsufficientCredits
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	if balance < 1 {
		return 0, storage.ErrInsufficientCredits
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE credits SET balance = balance - 1, reserved = reserved + 1, updated_at = ? WHERE user_id = ?`,
		time.Now(), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve credit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reservation: %w", err)
	}

	return balance - 1, nil
}

// Commit clears one reserved credit after a successful run.
func (s *Store) Commit(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE credits SET reserved = MAX(reserved - 1, 0), updated_at = ? WHERE user_id = ?`,
		time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to commit credit: %w", err)
	}
	return nil
}

// Refund returns one reserved credit to the balance after a failed run.
func (s *Store) Refund(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE credits SET balance = balance + 1, reserved = MAX(reserved - 1, 0), updated_at = ? WHERE user_id = ?`,
		time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to refund credit: %w", err)
	}
	return nil
}

// Balance reads the settled balance for a user. Unknown users read zero.
func (s *Store) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM credits WHERE user_id = ?`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

// Grant adds credits to a user, creating the row if needed. Used by
// provisioning and tests.
func (s *Store) Grant(ctx context.Context, userID string, amount int64) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO credits (user_id, balance, reserved, updated_at) VALUES (?, ?, 0, ?)
	ON CONFLICT(user_id) DO UPDATE SET balance = balance + excluded.balance, updated_at = excluded.updated_at;
	`, userID, amount, time.Now())
	if err != nil {
		return fmt.Errorf("failed to grant credits: %w", err)
	}
	return nil
}

// SaveRewrite persists one pipeline run record.
func (s *Store) SaveRewrite(ctx context.Context, rec *storage.RewriteRecord) error {
	rec.CreatedAt = time.Now()

	variations, err := json.Marshal(rec.Variations)
	if err != nil {
		return fmt.Errorf("failed to marshal variations: %w", err)
	}

	query := `INSERT INTO rewrites (id, user_id, address, status, error_type, prompt_tokens, duration_ns, variations, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Address, rec.Status, rec.ErrorType,
		rec.PromptTokens, rec.DurationNS, string(variations), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save rewrite: %w", err)
	}

	return nil
}

// GetRewrite loads one run record by ID.
func (s *Store) GetRewrite(ctx context.Context, id string) (*storage.RewriteRecord, error) {
	query := `SELECT id, user_id, address, status, error_type, prompt_tokens, duration_ns, variations, created_at
	          FROM rewrites WHERE id = ?`

	var rec storage.RewriteRecord
	var userID, errorType, variationsJSON sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &userID, &rec.Address, &rec.Status, &errorType,
		&rec.PromptTokens, &rec.DurationNS, &variationsJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("rewrite %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rewrite: %w", err)
	}

	rec.UserID = userID.String
	rec.ErrorType = errorType.String
	if variationsJSON.Valid && variationsJSON.String != "" {
		if err := json.Unmarshal([]byte(variationsJSON.String), &rec.Variations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal variations: %w", err)
		}
	}

	return &rec, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
