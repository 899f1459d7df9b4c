package catches

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fishcatch/internal/db"
)

// Catch is one logged haul.
type Catch struct {
	ID        string    `json:"id"`
	FishType  string    `json:"fish_type"`
	Pounds    float64   `json:"pounds"`
	CaughtAt  time.Time `json:"caught_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Stat aggregates logged pounds per fish type.
type Stat struct {
	FishType    string  `json:"fish_type"`
	TotalPounds float64 `json:"total_pounds"`
	Trips       int     `json:"trips"`
}

// Store persists catch logs.
type Store struct {
	db *db.DB
}

// NewStore creates a catch store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create logs a new catch and returns it with generated fields filled.
func (s *Store) Create(ctx context.Context, fishType string, pounds float64, caughtAt time.Time) (*Catch, error) {
	c := &Catch{
		ID:        uuid.NewString(),
		FishType:  fishType,
		Pounds:    pounds,
		CaughtAt:  caughtAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO catches (id, fish_type, pounds, caught_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.FishType, c.Pounds, c.CaughtAt.Format(time.DateTime), c.CreatedAt.Format(time.DateTime))
	if err != nil {
		return nil, fmt.Errorf("inserting catch: %w", err)
	}
	return c, nil
}

// Get returns a catch by id, or nil if not found.
func (s *Store) Get(ctx context.Context, id string) (*Catch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fish_type, pounds, caught_at, created_at FROM catches WHERE id = ?`, id)
	c, err := scanCatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting catch: %w", err)
	}
	return c, nil
}

// Latest returns the most recently caught entry, or nil if none exist.
func (s *Store) Latest(ctx context.Context) (*Catch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fish_type, pounds, caught_at, created_at FROM catches ORDER BY caught_at DESC LIMIT 1`)
	c, err := scanCatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest catch: %w", err)
	}
	return c, nil
}

// List returns catches newest first, up to limit.
func (s *Store) List(ctx context.Context, limit int) ([]Catch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fish_type, pounds, caught_at, created_at FROM catches ORDER BY caught_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing catches: %w", err)
	}
	defer rows.Close()

	var catches []Catch
	for rows.Next() {
		c, err := scanCatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catch: %w", err)
		}
		catches = append(catches, *c)
	}
	return catches, rows.Err()
}

// Stats returns per-fish-type totals across all logged catches.
func (s *Store) Stats(ctx context.Context) ([]Stat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fish_type, SUM(pounds), COUNT(*) FROM catches GROUP BY fish_type ORDER BY SUM(pounds) DESC`)
	if err != nil {
		return nil, fmt.Errorf("aggregating catches: %w", err)
	}
	defer rows.Close()

	var stats []Stat
	for rows.Next() {
		var st Stat
		if err := rows.Scan(&st.FishType, &st.TotalPounds, &st.Trips); err != nil {
			return nil, fmt.Errorf("scanning stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCatch(row scanner) (*Catch, error) {
	var c Catch
	var caughtAt, createdAt string
	if err := row.Scan(&c.ID, &c.FishType, &c.Pounds, &caughtAt, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if c.CaughtAt, err = db.ParseTime(caughtAt); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}
