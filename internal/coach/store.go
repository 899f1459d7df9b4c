package coach

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fishcatch/internal/db"
	"fishcatch/internal/guardrail"
)

// Store persists agent profiles, the coaching event log, and peer lessons.
// The engine itself carries no persistence concerns; tests inject MemStore.
type Store interface {
	// GetProfile returns the profile for the agent, or nil if none exists.
	GetProfile(ctx context.Context, agentID string) (*Profile, error)
	// PutProfile upserts a profile.
	PutProfile(ctx context.Context, p Profile) error
	// AppendEvent writes a new coaching event. Events are never updated
	// except through SetOutcome.
	AppendEvent(ctx context.Context, e Event) error
	// GetEvent returns an event by id, or nil if not found.
	GetEvent(ctx context.Context, id string) (*Event, error)
	// ListEvents returns events matching the filter, newest first.
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	// SetOutcome backfills the outcome fields of an event. Returns false
	// when no event with that id exists.
	SetOutcome(ctx context.Context, id string, improved bool, timeline int) (bool, error)
	// PeerLessons returns up to limit lessons recorded for the guardrail
	// by agents other than excludeAgent.
	PeerLessons(ctx context.Context, g guardrail.Guardrail, excludeAgent string, limit int) ([]string, error)
}

// EventFilter controls which coaching events ListEvents returns.
type EventFilter struct {
	AgentID   string
	Guardrail guardrail.Guardrail
	Limit     int
}

// SQLStore is the SQLite-backed Store.
type SQLStore struct {
	db *db.DB
}

// NewSQLStore creates a SQLStore backed by the given database.
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

func (s *SQLStore) GetProfile(ctx context.Context, agentID string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT agent_id, agent_type, learning_level, violation_counts,
		       improvement_score, receptiveness, coaching_style,
		       expertise, weaknesses, last_coaching
		FROM agent_profiles WHERE agent_id = ?`, agentID)

	var (
		p                                  Profile
		agentType, level                   string
		countsJSON, expJSON, weakJSON      string
		lastCoaching                       sql.NullString
	)
	err := row.Scan(&p.AgentID, &agentType, &level, &countsJSON,
		&p.ImprovementScore, &p.Receptiveness, &p.CoachingStyle,
		&expJSON, &weakJSON, &lastCoaching)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	p.AgentType = guardrail.AgentType(agentType)
	p.LearningLevel = LearningLevel(level)
	if err := json.Unmarshal([]byte(countsJSON), &p.ViolationCounts); err != nil {
		return nil, fmt.Errorf("parsing violation counts: %w", err)
	}
	if p.ViolationCounts == nil {
		p.ViolationCounts = map[guardrail.Guardrail]int{}
	}
	if err := json.Unmarshal([]byte(expJSON), &p.Expertise); err != nil {
		p.Expertise = nil
	}
	if err := json.Unmarshal([]byte(weakJSON), &p.Weaknesses); err != nil {
		p.Weaknesses = nil
	}
	if lastCoaching.Valid {
		t, err := db.ParseTime(lastCoaching.String)
		if err != nil {
			return nil, fmt.Errorf("parsing last coaching time: %w", err)
		}
		p.LastCoaching = &t
	}
	return &p, nil
}

func (s *SQLStore) PutProfile(ctx context.Context, p Profile) error {
	counts, err := json.Marshal(p.ViolationCounts)
	if err != nil {
		return fmt.Errorf("marshalling violation counts: %w", err)
	}
	expertise, err := json.Marshal(p.Expertise)
	if err != nil {
		return fmt.Errorf("marshalling expertise: %w", err)
	}
	weaknesses, err := json.Marshal(p.Weaknesses)
	if err != nil {
		return fmt.Errorf("marshalling weaknesses: %w", err)
	}

	var lastCoaching *string
	if p.LastCoaching != nil {
		t := p.LastCoaching.UTC().Format(time.DateTime)
		lastCoaching = &t
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_profiles (
			agent_id, agent_type, learning_level, violation_counts,
			improvement_score, receptiveness, coaching_style,
			expertise, weaknesses, last_coaching
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET
			agent_type = excluded.agent_type,
			learning_level = excluded.learning_level,
			violation_counts = excluded.violation_counts,
			improvement_score = excluded.improvement_score,
			receptiveness = excluded.receptiveness,
			coaching_style = excluded.coaching_style,
			expertise = excluded.expertise,
			weaknesses = excluded.weaknesses,
			last_coaching = excluded.last_coaching`,
		p.AgentID,
		string(p.AgentType),
		string(p.LearningLevel),
		string(counts),
		p.ImprovementScore,
		p.Receptiveness,
		p.CoachingStyle,
		string(expertise),
		string(weaknesses),
		lastCoaching,
	)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

func (s *SQLStore) AppendEvent(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO coaching_events (
			id, timestamp, agent_id, agent_type, guardrail, depth,
			violation_description, coaching_delivered
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Timestamp.UTC().Format(time.DateTime),
		e.AgentID,
		string(e.AgentType),
		string(e.Guardrail),
		string(e.Depth),
		e.ViolationDescription,
		e.CoachingDelivered,
	)
	if err != nil {
		return fmt.Errorf("inserting coaching event: %w", err)
	}
	return nil
}

func (s *SQLStore) GetEvent(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, agent_id, agent_type, guardrail, depth,
		       violation_description, coaching_delivered,
		       agent_response, improved, improvement_timeline
		FROM coaching_events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (s *SQLStore) ListEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	var clauses []string
	var args []any

	if filter.AgentID != "" {
		clauses = append(clauses, "agent_id = ?")
		args = append(args, filter.AgentID)
	}
	if filter.Guardrail != "" {
		clauses = append(clauses, "guardrail = ?")
		args = append(args, string(filter.Guardrail))
	}

	query := `SELECT id, timestamp, agent_id, agent_type, guardrail, depth,
		violation_description, coaching_delivered,
		agent_response, improved, improvement_timeline FROM coaching_events`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying coaching events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *SQLStore) SetOutcome(ctx context.Context, id string, improved bool, timeline int) (bool, error) {
	improvedInt := 0
	if improved {
		improvedInt = 1
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE coaching_events SET improved = ?, improvement_timeline = ?
		WHERE id = ?`, improvedInt, timeline, id)
	if err != nil {
		return false, fmt.Errorf("recording coaching outcome: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) PeerLessons(ctx context.Context, g guardrail.Guardrail, excludeAgent string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lesson FROM peer_lessons
		WHERE guardrail = ? AND agent_id != ?
		ORDER BY created_at DESC LIMIT ?`,
		string(g), excludeAgent, limit)
	if err != nil {
		return nil, fmt.Errorf("querying peer lessons: %w", err)
	}
	defer rows.Close()

	var lessons []string
	for rows.Next() {
		var lesson string
		if err := rows.Scan(&lesson); err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (*Event, error) {
	var (
		e                           Event
		ts, agentType, g, depth     string
		agentResponse               sql.NullString
		improved, timeline          sql.NullInt64
	)
	err := sc.Scan(&e.ID, &ts, &e.AgentID, &agentType, &g, &depth,
		&e.ViolationDescription, &e.CoachingDelivered,
		&agentResponse, &improved, &timeline)
	if err != nil {
		return nil, err
	}

	e.AgentType = guardrail.AgentType(agentType)
	e.Guardrail = guardrail.Guardrail(g)
	e.Depth = Depth(depth)
	e.Timestamp, err = db.ParseTime(ts)
	if err != nil {
		return nil, err
	}
	if agentResponse.Valid {
		v := agentResponse.String
		e.AgentResponse = &v
	}
	if improved.Valid {
		v := improved.Int64 != 0
		e.Improved = &v
	}
	if timeline.Valid {
		v := int(timeline.Int64)
		e.ImprovementTimeline = &v
	}
	return &e, nil
}
