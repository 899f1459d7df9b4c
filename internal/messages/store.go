package messages

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fishcatch/internal/db"
)

// Message is one outbound text, from draft through delivery.
type Message struct {
	ID        string     `json:"id"`
	BuyerID   string     `json:"buyer_id"`
	CatchID   string     `json:"catch_id,omitempty"`
	Body      string     `json:"body"`
	Status    string     `json:"status"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Store persists outbound messages.
type Store struct {
	db *db.DB
}

// NewStore creates a message store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateDraft stores an accepted draft awaiting operator approval.
func (s *Store) CreateDraft(ctx context.Context, buyerID, catchID, body string) (*Message, error) {
	m := &Message{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		CatchID:   catchID,
		Body:      body,
		Status:    "draft",
		CreatedAt: time.Now().UTC(),
	}
	var catchRef any
	if catchID != "" {
		catchRef = catchID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, buyer_id, catch_id, body, status, created_at) VALUES (?, ?, ?, ?, 'draft', ?)`,
		m.ID, m.BuyerID, catchRef, m.Body, m.CreatedAt.Format(time.DateTime))
	if err != nil {
		return nil, fmt.Errorf("inserting draft: %w", err)
	}
	return m, nil
}

// MarkSent records successful delivery.
func (s *Store) MarkSent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE messages SET status = 'sent', sent_at = ? WHERE id = ?`, now.Format(time.DateTime), id)
	if err != nil {
		return fmt.Errorf("marking message sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure.
func (s *Store) MarkFailed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE messages SET status = 'failed' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking message failed: %w", err)
	}
	return nil
}

// Get returns a message by id, or nil if not found.
func (s *Store) Get(ctx context.Context, id string) (*Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, buyer_id, catch_id, body, status, sent_at, created_at FROM messages WHERE id = ?`, id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return m, nil
}

// List returns messages newest first, optionally filtered by buyer.
func (s *Store) List(ctx context.Context, buyerID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, buyer_id, catch_id, body, status, sent_at, created_at FROM messages`
	args := []any{}
	if buyerID != "" {
		query += ` WHERE buyer_id = ?`
		args = append(args, buyerID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// RecentlyContacted reports whether the buyer received a sent message
// within the given window.
func (s *Store) RecentlyContacted(ctx context.Context, buyerID string, window time.Duration) (bool, error) {
	cutoff := time.Now().UTC().Add(-window)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE buyer_id = ? AND status = 'sent' AND sent_at > ?`,
		buyerID, cutoff.Format(time.DateTime)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking contact recency: %w", err)
	}
	return count > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*Message, error) {
	var m Message
	var catchID, sentAt sql.NullString
	var createdAt string
	if err := row.Scan(&m.ID, &m.BuyerID, &catchID, &m.Body, &m.Status, &sentAt, &createdAt); err != nil {
		return nil, err
	}
	m.CatchID = catchID.String
	if sentAt.Valid {
		t, err := db.ParseTime(sentAt.String)
		if err != nil {
			return nil, err
		}
		m.SentAt = &t
	}
	var err error
	if m.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}
