package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fishcatch/internal/db"
)

// Sale records one completed transaction.
type Sale struct {
	ID            string    `json:"id"`
	CatchID       string    `json:"catch_id"`
	BuyerID       string    `json:"buyer_id"`
	PoundsSold    float64   `json:"pounds_sold"`
	FinalPrice    float64   `json:"final_price"`
	MeetupDetails string    `json:"meetup_details,omitempty"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Summary aggregates sales over a period.
type Summary struct {
	Sales       int     `json:"sales"`
	PoundsSold  float64 `json:"pounds_sold"`
	Revenue     float64 `json:"revenue"`
	AvgPerPound float64 `json:"avg_per_pound"`
}

// Store persists completed sales.
type Store struct {
	db *db.DB
}

// NewStore creates a sales store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record stores a completed sale.
func (s *Store) Record(ctx context.Context, sale Sale) (*Sale, error) {
	if sale.CatchID == "" || sale.BuyerID == "" {
		return nil, fmt.Errorf("catch_id and buyer_id are required")
	}
	if sale.PoundsSold <= 0 || sale.FinalPrice <= 0 {
		return nil, fmt.Errorf("pounds_sold and final_price must be positive")
	}

	sale.ID = uuid.NewString()
	sale.CompletedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sales (id, catch_id, buyer_id, pounds_sold, final_price, meetup_details, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.CatchID, sale.BuyerID, sale.PoundsSold, sale.FinalPrice,
		sale.MeetupDetails, sale.CompletedAt.Format(time.DateTime))
	if err != nil {
		return nil, fmt.Errorf("inserting sale: %w", err)
	}
	return &sale, nil
}

// List returns sales newest first, up to limit.
func (s *Store) List(ctx context.Context, limit int) ([]Sale, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, catch_id, buyer_id, pounds_sold, final_price, meetup_details, completed_at
		 FROM sales ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var sale Sale
		var completedAt string
		if err := rows.Scan(&sale.ID, &sale.CatchID, &sale.BuyerID, &sale.PoundsSold,
			&sale.FinalPrice, &sale.MeetupDetails, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}
		if sale.CompletedAt, err = db.ParseTime(completedAt); err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

// Summarize aggregates all recorded sales.
func (s *Store) Summarize(ctx context.Context) (*Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(pounds_sold), 0), COALESCE(SUM(final_price), 0) FROM sales`).
		Scan(&sum.Sales, &sum.PoundsSold, &sum.Revenue)
	if err != nil {
		return nil, fmt.Errorf("summarizing sales: %w", err)
	}
	if sum.PoundsSold > 0 {
		sum.AvgPerPound = sum.Revenue / sum.PoundsSold
	}
	return &sum, nil
}
