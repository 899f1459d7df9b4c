package coach

import (
	"context"
	"sync"

	"fishcatch/internal/guardrail"
)

// MemStore is an in-memory Store for tests and throwaway runs.
type MemStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
	events   []Event
	lessons  map[guardrail.Guardrail][]peerLesson
}

type peerLesson struct {
	agentID string
	lesson  string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		profiles: map[string]Profile{},
		lessons:  map[guardrail.Guardrail][]peerLesson{},
	}
}

func (m *MemStore) GetProfile(_ context.Context, agentID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[agentID]
	if !ok {
		return nil, nil
	}
	// Copy the counts map so callers can't mutate stored state.
	counts := make(map[guardrail.Guardrail]int, len(p.ViolationCounts))
	for k, v := range p.ViolationCounts {
		counts[k] = v
	}
	p.ViolationCounts = counts
	return &p, nil
}

func (m *MemStore) PutProfile(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.AgentID] = p
	return nil
}

func (m *MemStore) AppendEvent(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *MemStore) GetEvent(_ context.Context, id string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			e := m.events[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ListEvents(_ context.Context, filter EventFilter) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for i := len(m.events) - 1; i >= 0; i-- {
		e := m.events[i]
		if filter.AgentID != "" && e.AgentID != filter.AgentID {
			continue
		}
		if filter.Guardrail != "" && e.Guardrail != filter.Guardrail {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemStore) SetOutcome(_ context.Context, id string, improved bool, timeline int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == id {
			v := improved
			t := timeline
			m.events[i].Improved = &v
			m.events[i].ImprovementTimeline = &t
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) PeerLessons(_ context.Context, g guardrail.Guardrail, excludeAgent string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, l := range m.lessons[g] {
		if l.agentID == excludeAgent {
			continue
		}
		out = append(out, l.lesson)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// AddPeerLesson records a lesson for tests. Nothing in the engine writes
// peer lessons; the read path is a deliberate extension point.
func (m *MemStore) AddPeerLesson(g guardrail.Guardrail, agentID, lesson string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lessons[g] = append(m.lessons[g], peerLesson{agentID: agentID, lesson: lesson})
}
