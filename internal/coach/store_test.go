package coach

import (
	"context"
	"testing"
	"time"

	"fishcatch/internal/db"
	"fishcatch/internal/guardrail"
)

func setupSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQLStore(database)
}

func TestSQLStoreProfileRoundTrip(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	missing, err := store.GetProfile(ctx, "nobody")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil profile for unknown agent")
	}

	now := time.Now().UTC().Truncate(time.Second)
	p := *newProfile("fishing_agent_001", guardrail.SalesCoordinator)
	p.ViolationCounts[guardrail.PIIProtection] = 2
	p.LearningLevel = LevelAdvanced
	p.LastCoaching = &now

	if err := store.PutProfile(ctx, p); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}

	got, err := store.GetProfile(ctx, "fishing_agent_001")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored profile")
	}
	if got.AgentType != guardrail.SalesCoordinator {
		t.Errorf("AgentType = %q", got.AgentType)
	}
	if got.LearningLevel != LevelAdvanced {
		t.Errorf("LearningLevel = %q", got.LearningLevel)
	}
	if got.ViolationCounts[guardrail.PIIProtection] != 2 {
		t.Errorf("count = %d, want 2", got.ViolationCounts[guardrail.PIIProtection])
	}
	if got.LastCoaching == nil || !got.LastCoaching.Equal(now) {
		t.Errorf("LastCoaching = %v, want %v", got.LastCoaching, now)
	}
}

func TestSQLStoreProfileUpsert(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	p := *newProfile("a", guardrail.SalesCoordinator)
	if err := store.PutProfile(ctx, p); err != nil {
		t.Fatalf("PutProfile: %v", err)
	}

	p.ViolationCounts[guardrail.DataIntegrity] = 1
	if err := store.PutProfile(ctx, p); err != nil {
		t.Fatalf("PutProfile update: %v", err)
	}

	got, err := store.GetProfile(ctx, "a")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.ViolationCounts[guardrail.DataIntegrity] != 1 {
		t.Error("upsert should replace violation counts")
	}
}

func TestSQLStoreEventRoundTripAndOutcome(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	event := Event{
		ID:                   "ev-1",
		Timestamp:            time.Now().UTC(),
		AgentID:              "fishing_agent_001",
		AgentType:            guardrail.SalesCoordinator,
		Guardrail:            guardrail.FinancialAccuracy,
		Depth:                DepthHigh,
		ViolationDescription: "Draft message contains incorrect financial figure: $1800",
		CoachingDelivered:    "What happened: ...",
	}
	if err := store.AppendEvent(ctx, event); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	got, err := store.GetEvent(ctx, "ev-1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored event")
	}
	if got.Guardrail != guardrail.FinancialAccuracy {
		t.Errorf("Guardrail = %q", got.Guardrail)
	}
	if got.Improved != nil || got.ImprovementTimeline != nil {
		t.Error("outcome fields should start null")
	}

	found, err := store.SetOutcome(ctx, "ev-1", true, 7)
	if err != nil {
		t.Fatalf("SetOutcome: %v", err)
	}
	if !found {
		t.Fatal("SetOutcome should report the event as found")
	}

	got, err = store.GetEvent(ctx, "ev-1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Improved == nil || !*got.Improved {
		t.Error("Improved should be true after backfill")
	}
	if got.ImprovementTimeline == nil || *got.ImprovementTimeline != 7 {
		t.Error("ImprovementTimeline should be 7 after backfill")
	}
}

func TestSQLStoreSetOutcomeUnknownID(t *testing.T) {
	store := setupSQLStore(t)

	found, err := store.SetOutcome(context.Background(), "missing", false, 0)
	if err != nil {
		t.Fatalf("SetOutcome: %v", err)
	}
	if found {
		t.Error("SetOutcome on unknown id should report not found")
	}
}

func TestSQLStoreListEventsFilters(t *testing.T) {
	store := setupSQLStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, g := range []guardrail.Guardrail{
		guardrail.PIIProtection,
		guardrail.PIIProtection,
		guardrail.DataIntegrity,
	} {
		err := store.AppendEvent(ctx, Event{
			ID:                   string(rune('a' + i)),
			Timestamp:            base.Add(time.Duration(i) * time.Second),
			AgentID:              "agent",
			AgentType:            guardrail.SalesCoordinator,
			Guardrail:            g,
			Depth:                DepthMedium,
			ViolationDescription: "d",
			CoachingDelivered:    "c",
		})
		if err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	events, err := store.ListEvents(ctx, EventFilter{Guardrail: guardrail.PIIProtection})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("filtered events = %d, want 2", len(events))
	}

	events, err = store.ListEvents(ctx, EventFilter{AgentID: "agent", Limit: 1})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("limited events = %d, want 1", len(events))
	}
}

func TestSQLStorePeerLessonsExcludesAgent(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()
	store := NewSQLStore(database)
	ctx := context.Background()

	_, err = database.ExecContext(ctx, `
		INSERT INTO peer_lessons (id, guardrail, agent_id, lesson) VALUES
		('l1', 'pii_protection', 'other', 'Message one buyer at a time'),
		('l2', 'pii_protection', 'me', 'My own lesson')`)
	if err != nil {
		t.Fatalf("seeding lessons: %v", err)
	}

	lessons, err := store.PeerLessons(ctx, guardrail.PIIProtection, "me", 3)
	if err != nil {
		t.Fatalf("PeerLessons: %v", err)
	}
	if len(lessons) != 1 || lessons[0] != "Message one buyer at a time" {
		t.Errorf("lessons = %v", lessons)
	}
}

// The engine behaves identically over the SQL store; run the core
// escalation path against it once to keep both implementations honest.
func TestEngineOverSQLStore(t *testing.T) {
	store := setupSQLStore(t)
	engine := New(store)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := engine.Coach(ctx, testViolation()); err != nil {
			t.Fatalf("Coach: %v", err)
		}
	}

	profile, err := store.GetProfile(ctx, "fishing_agent_001")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.ViolationCounts[guardrail.HallucinationPrevention] != 3 {
		t.Errorf("count = %d, want 3", profile.ViolationCounts[guardrail.HallucinationPrevention])
	}

	events, err := store.ListEvents(ctx, EventFilter{AgentID: "fishing_agent_001"})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("events = %d, want 3", len(events))
	}
}
