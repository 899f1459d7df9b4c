package coach

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fishcatch/internal/guardrail"
)

// Engine turns guardrail violations into personalized coaching. It owns
// the profile map and the event log for the lifetime of the process; a
// single engine-wide mutex serializes coaching so per-agent counts stay
// consistent under a concurrent server.
type Engine struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// New creates a coaching engine over the given store.
func New(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

const maxPeerLessons = 3

// Coach produces coaching for one violation, appends the matching event,
// and advances the agent's profile. The only error paths are a violation
// that breaks the coaching contract and store failures; lookup misses
// inside the engine fall through to defaults.
func (e *Engine) Coach(ctx context.Context, v guardrail.Violation) (*Result, error) {
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("coaching contract: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	profile, err := e.store.GetProfile(ctx, v.AgentID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		profile = newProfile(v.AgentID, v.AgentType)
	}

	prior := profile.ViolationCounts[v.Guardrail]
	strat := selectStrategy(v.Guardrail, profile.AgentType, profile.LearningLevel)
	coaching := buildCoaching(v, profile, strat, prior+1)
	depth := depthFor(v.Severity)

	lessons, err := e.store.PeerLessons(ctx, v.Guardrail, v.AgentID, maxPeerLessons)
	if err != nil {
		return nil, fmt.Errorf("loading peer lessons: %w", err)
	}
	peerText := formatPeerLessons(lessons)
	if peerText != "" {
		coaching += "\n\nPeer lessons:\n" + peerText
	}

	event := Event{
		ID:                   uuid.NewString(),
		Timestamp:            e.now(),
		AgentID:              v.AgentID,
		AgentType:            profile.AgentType,
		Guardrail:            v.Guardrail,
		Depth:                depth,
		ViolationDescription: v.WhatHappened,
		CoachingDelivered:    coaching,
	}
	if err := e.store.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("appending coaching event: %w", err)
	}

	profile.ViolationCounts[v.Guardrail] = prior + 1
	now := e.now()
	profile.LastCoaching = &now
	if err := e.store.PutProfile(ctx, *profile); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return &Result{
		EventID:                event.ID,
		Coaching:               coaching,
		Depth:                  depth,
		Suggestions:            suggestions(),
		Principle:              principleFor(v.Guardrail),
		Followups:              followups(prior),
		PredictedEffectiveness: predictEffectiveness(profile, prior),
		PeerLessons:            peerText,
		Blocked:                depth == DepthCritical,
	}, nil
}

// RecordOutcome backfills whether coaching worked, by event id. Unknown
// ids are a silent no-op so out-of-band callers can retry safely.
func (e *Engine) RecordOutcome(ctx context.Context, eventID string, improved bool, timelineRequests int) error {
	_, err := e.store.SetOutcome(ctx, eventID, improved, timelineRequests)
	return err
}

// Events exposes the event log for inspection endpoints.
func (e *Engine) Events(ctx context.Context, filter EventFilter) ([]Event, error) {
	return e.store.ListEvents(ctx, filter)
}

// Event returns a single coaching event, or nil if unknown.
func (e *Engine) Event(ctx context.Context, id string) (*Event, error) {
	return e.store.GetEvent(ctx, id)
}

// predictEffectiveness estimates, in [0,1], how likely this coaching is
// to land: receptive agents respond better, novices need repetition,
// advanced agents generalize, and an entrenched pattern resists coaching.
func predictEffectiveness(p *Profile, priorCount int) float64 {
	effectiveness := 0.7
	effectiveness *= 0.5 + p.Receptiveness

	switch p.LearningLevel {
	case LevelNovice:
		effectiveness *= 0.8
	case LevelAdvanced:
		effectiveness *= 1.2
	}

	if priorCount > 3 {
		effectiveness *= 0.6
	}

	if effectiveness > 1.0 {
		return 1.0
	}
	if effectiveness < 0.0 {
		return 0.0
	}
	return effectiveness
}
