package roster

import (
	"github.com/google/uuid"

	"github.com/mappyas/gamematch/pkg/domain"
)

// Read-only projections over the canonical map. These never mutate engine
// state; callers get copies and recompute on every state-change message.

// All returns every entity in insertion order, terminal statuses included.
// The browse view uses this for its brief "just closed" transition rows.
func (e *Engine) All() []domain.Recruitment {
	out := make([]domain.Recruitment, 0, len(e.order))
	for _, id := range e.order {
		if r, ok := e.entries[id]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Active returns the open and ongoing rooms in insertion order.
func (e *Engine) Active() []domain.Recruitment {
	out := make([]domain.Recruitment, 0, len(e.order))
	for _, id := range e.order {
		if r, ok := e.entries[id]; ok && r.Status.Active() {
			out = append(out, r.Clone())
		}
	}
	return out
}

// ByGame returns the active rooms for one game, insertion order preserved.
// An empty gameID means no filter.
func (e *Engine) ByGame(gameID string) []domain.Recruitment {
	if gameID == "" {
		return e.Active()
	}
	var out []domain.Recruitment
	for _, id := range e.order {
		if r, ok := e.entries[id]; ok && r.Status.Active() && r.GameID == gameID {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Mine returns the single active room the user owns or has joined, or nil.
// The server enforces at most one; if a transient merge state ever shows
// two, the earliest by insertion order wins.
func (e *Engine) Mine(userID uuid.UUID) *domain.Recruitment {
	for _, id := range e.order {
		if r, ok := e.entries[id]; ok && r.Status.Active() && r.Involves(userID) {
			c := r.Clone()
			return &c
		}
	}
	return nil
}
