package prices

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fishcatch/internal/db"
)

// ManualSource labels prices entered by hand rather than scraped.
const ManualSource = "Manual Entry"

// Price is one verified per-pound quote for a fish type.
type Price struct {
	ID          string    `json:"id"`
	FishType    string    `json:"fish_type"`
	PerLb       float64   `json:"price_per_lb"`
	CanneryName string    `json:"cannery_name"`
	CanneryURL  string    `json:"cannery_url,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Cannery is one price source the scraper visits.
type Cannery struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists price quotes and cannery sources.
type Store struct {
	db *db.DB
}

// NewStore creates a price store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Add records a new price quote.
func (s *Store) Add(ctx context.Context, fishType string, perLb float64, canneryName, canneryURL string) (*Price, error) {
	if perLb <= 0 {
		return nil, fmt.Errorf("price per lb must be positive")
	}
	if canneryName == "" {
		canneryName = ManualSource
	}
	p := &Price{
		ID:          uuid.NewString(),
		FishType:    fishType,
		PerLb:       perLb,
		CanneryName: canneryName,
		CanneryURL:  canneryURL,
		ScrapedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prices (id, fish_type, price_per_lb, cannery_name, cannery_url, scraped_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.FishType, p.PerLb, p.CanneryName, p.CanneryURL, p.ScrapedAt.Format(time.DateTime))
	if err != nil {
		return nil, fmt.Errorf("inserting price: %w", err)
	}
	return p, nil
}

// LatestFor returns the most recent quote for a fish type, or nil if
// no price has ever been recorded for it.
func (s *Store) LatestFor(ctx context.Context, fishType string) (*Price, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, fish_type, price_per_lb, cannery_name, cannery_url, scraped_at
		 FROM prices WHERE fish_type = ? ORDER BY scraped_at DESC, rowid DESC LIMIT 1`, fishType)
	p, err := scanPrice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest price: %w", err)
	}
	return p, nil
}

// Latest returns the most recent quote per fish type.
func (s *Store) Latest(ctx context.Context) ([]Price, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fish_type, price_per_lb, cannery_name, cannery_url, scraped_at FROM prices
		 WHERE id IN (
		     SELECT id FROM prices p2 WHERE p2.fish_type = prices.fish_type
		     ORDER BY p2.scraped_at DESC, p2.rowid DESC LIMIT 1)
		 ORDER BY fish_type`)
	if err != nil {
		return nil, fmt.Errorf("listing latest prices: %w", err)
	}
	defer rows.Close()
	return collectPrices(rows)
}

// History returns quotes for one fish type, newest first.
func (s *Store) History(ctx context.Context, fishType string, limit int) ([]Price, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, fish_type, price_per_lb, cannery_name, cannery_url, scraped_at
		 FROM prices WHERE fish_type = ? ORDER BY scraped_at DESC, rowid DESC LIMIT ?`, fishType, limit)
	if err != nil {
		return nil, fmt.Errorf("listing price history: %w", err)
	}
	defer rows.Close()
	return collectPrices(rows)
}

// AddCannery registers a cannery price page.
func (s *Store) AddCannery(ctx context.Context, name, url string) (*Cannery, error) {
	if url == "" {
		return nil, fmt.Errorf("cannery url is required")
	}
	c := &Cannery{
		ID:        uuid.NewString(),
		Name:      name,
		URL:       url,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO canneries (id, name, url, active, created_at) VALUES (?, ?, ?, 1, ?)`,
		c.ID, c.Name, c.URL, c.CreatedAt.Format(time.DateTime))
	if err != nil {
		return nil, fmt.Errorf("inserting cannery: %w", err)
	}
	return c, nil
}

// Canneries returns the active cannery sources.
func (s *Store) Canneries(ctx context.Context) ([]Cannery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, active, created_at FROM canneries WHERE active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing canneries: %w", err)
	}
	defer rows.Close()

	var canneries []Cannery
	for rows.Next() {
		var c Cannery
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.URL, &c.Active, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning cannery: %w", err)
		}
		if c.CreatedAt, err = db.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("scanning cannery: %w", err)
		}
		canneries = append(canneries, c)
	}
	return canneries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrice(row scanner) (*Price, error) {
	var p Price
	var url sql.NullString
	var scrapedAt string
	if err := row.Scan(&p.ID, &p.FishType, &p.PerLb, &p.CanneryName, &url, &scrapedAt); err != nil {
		return nil, err
	}
	p.CanneryURL = url.String
	var err error
	if p.ScrapedAt, err = db.ParseTime(scrapedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPrices(rows *sql.Rows) ([]Price, error) {
	var prices []Price
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning price: %w", err)
		}
		prices = append(prices, *p)
	}
	return prices, rows.Err()
}
