package buyers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fishcatch/internal/db"
)

// Carriers lists the supported SMS gateway carriers.
var Carriers = []string{"verizon", "att", "tmobile", "sprint"}

// ValidCarrier reports whether the carrier has a known SMS gateway.
func ValidCarrier(carrier string) bool {
	for _, c := range Carriers {
		if c == carrier {
			return true
		}
	}
	return false
}

// Buyer is one contact the operation sells to.
type Buyer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Carrier       string    `json:"carrier"`
	Email         string    `json:"email,omitempty"`
	PreferredFish []string  `json:"preferred_fish"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists buyer contacts.
type Store struct {
	db *db.DB
}

// NewStore creates a buyer store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a buyer. Phone numbers are normalized to bare digits.
func (s *Store) Create(ctx context.Context, b Buyer) (*Buyer, error) {
	phone, err := NormalizePhone(b.Phone)
	if err != nil {
		return nil, err
	}
	if b.Name == "" {
		return nil, fmt.Errorf("buyer name is required")
	}
	if !ValidCarrier(b.Carrier) {
		return nil, fmt.Errorf("unknown carrier %q: must be one of %s", b.Carrier, strings.Join(Carriers, ", "))
	}

	b.ID = uuid.NewString()
	b.Phone = phone
	b.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO buyers (id, name, phone, carrier, email, preferred_fish, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Phone, b.Carrier, b.Email,
		strings.Join(b.PreferredFish, ","), b.Notes, b.CreatedAt.Format(time.DateTime))
	if err != nil {
		return nil, fmt.Errorf("inserting buyer: %w", err)
	}
	return &b, nil
}

// Get returns a buyer by id, or nil if not found.
func (s *Store) Get(ctx context.Context, id string) (*Buyer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, carrier, email, preferred_fish, notes, created_at FROM buyers WHERE id = ?`, id)
	b, err := scanBuyer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting buyer: %w", err)
	}
	return b, nil
}

// List returns all buyers ordered by name.
func (s *Store) List(ctx context.Context) ([]Buyer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, phone, carrier, email, preferred_fish, notes, created_at FROM buyers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing buyers: %w", err)
	}
	defer rows.Close()

	var buyers []Buyer
	for rows.Next() {
		b, err := scanBuyer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning buyer: %w", err)
		}
		buyers = append(buyers, *b)
	}
	return buyers, rows.Err()
}

// InterestedIn returns the buyers whose preferences include the given
// fish type. Buyers with no stated preference take everything.
func (s *Store) InterestedIn(ctx context.Context, fishType string) ([]Buyer, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var interested []Buyer
	for _, b := range all {
		if len(b.PreferredFish) == 0 {
			interested = append(interested, b)
			continue
		}
		for _, ft := range b.PreferredFish {
			if strings.EqualFold(ft, fishType) {
				interested = append(interested, b)
				break
			}
		}
	}
	return interested, nil
}

// Delete removes a buyer and, via cascade, their message history.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM buyers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting buyer: %w", err)
	}
	return nil
}

// NormalizePhone reduces a phone number to ten bare digits, dropping a
// leading country code 1.
func NormalizePhone(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	normalized := digits.String()
	if len(normalized) == 11 && normalized[0] == '1' {
		normalized = normalized[1:]
	}
	if len(normalized) != 10 {
		return "", fmt.Errorf("invalid phone number %q: need 10 digits", phone)
	}
	return normalized, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuyer(row scanner) (*Buyer, error) {
	var b Buyer
	var email sql.NullString
	var preferred, createdAt string
	if err := row.Scan(&b.ID, &b.Name, &b.Phone, &b.Carrier, &email, &preferred, &b.Notes, &createdAt); err != nil {
		return nil, err
	}
	b.Email = email.String
	if preferred != "" {
		b.PreferredFish = strings.Split(preferred, ",")
	}
	var err error
	if b.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}
