package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with fishcatch-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// ParseTime parses a DATETIME column value. Stores write the
// "2006-01-02 15:04:05" layout, but the driver hands values back in
// RFC 3339 form, so both layouts must be accepted on read.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// migrate runs all schema migrations.
func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

// schema contains the full database schema. New tables are added here.
const schema = `
CREATE TABLE IF NOT EXISTS catches (
    id TEXT PRIMARY KEY,
    fish_type TEXT NOT NULL CHECK(fish_type IN ('Crab','Salmon','Halibut','Other')),
    pounds REAL NOT NULL,
    caught_at DATETIME NOT NULL DEFAULT (datetime('now')),
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_catches_caught_at ON catches(caught_at);

CREATE TABLE IF NOT EXISTS buyers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL,
    carrier TEXT NOT NULL CHECK(carrier IN ('verizon','att','tmobile','sprint')),
    email TEXT,
    preferred_fish TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS canneries (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    url TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS prices (
    id TEXT PRIMARY KEY,
    fish_type TEXT NOT NULL,
    price_per_lb REAL NOT NULL,
    cannery_name TEXT NOT NULL DEFAULT 'Manual Entry',
    cannery_url TEXT,
    scraped_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_prices_fish ON prices(fish_type, scraped_at);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    buyer_id TEXT NOT NULL REFERENCES buyers(id) ON DELETE CASCADE,
    catch_id TEXT REFERENCES catches(id),
    body TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft','sent','failed')),
    sent_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_messages_buyer ON messages(buyer_id, sent_at);

CREATE TABLE IF NOT EXISTS sales (
    id TEXT PRIMARY KEY,
    catch_id TEXT NOT NULL REFERENCES catches(id),
    buyer_id TEXT NOT NULL REFERENCES buyers(id),
    pounds_sold REAL NOT NULL,
    final_price REAL NOT NULL,
    meetup_details TEXT NOT NULL DEFAULT '',
    completed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS agent_profiles (
    agent_id TEXT PRIMARY KEY,
    agent_type TEXT NOT NULL,
    learning_level TEXT NOT NULL DEFAULT 'intermediate' CHECK(learning_level IN ('novice','intermediate','advanced')),
    violation_counts TEXT NOT NULL DEFAULT '{}',
    improvement_score REAL NOT NULL DEFAULT 0.8,
    receptiveness REAL NOT NULL DEFAULT 1.0,
    coaching_style TEXT NOT NULL DEFAULT 'balanced',
    expertise TEXT NOT NULL DEFAULT '[]',
    weaknesses TEXT NOT NULL DEFAULT '[]',
    last_coaching DATETIME
);

CREATE TABLE IF NOT EXISTS coaching_events (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT (datetime('now')),
    agent_id TEXT NOT NULL,
    agent_type TEXT NOT NULL,
    guardrail TEXT NOT NULL,
    depth TEXT NOT NULL,
    violation_description TEXT NOT NULL,
    coaching_delivered TEXT NOT NULL,
    agent_response TEXT,
    improved INTEGER,
    improvement_timeline INTEGER
);

CREATE INDEX IF NOT EXISTS idx_coaching_events_agent ON coaching_events(agent_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_coaching_events_guardrail ON coaching_events(guardrail);

CREATE TABLE IF NOT EXISTS peer_lessons (
    id TEXT PRIMARY KEY,
    guardrail TEXT NOT NULL,
    agent_id TEXT NOT NULL,
    lesson TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_peer_lessons_guardrail ON peer_lessons(guardrail);
`
