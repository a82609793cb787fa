// Package roster keeps the client's canonical view of the recruitment
// listing consistent: an authoritative snapshot seed, an unordered stream of
// push events, and optimistic local mutations all merge into one
// insertion-ordered map.
//
// The engine does no locking. Every mutating call must come from a single
// serialization point — in this app, the bubbletea update loop. I/O never
// happens here; completions are fed back in as Apply/ResolveOptimistic calls.
package roster

import (
	"github.com/google/uuid"

	"github.com/mappyas/gamematch/pkg/domain"
	"github.com/mappyas/gamematch/pkg/push"
)

// Mutator applies an optimistic local change to a cloned recruitment.
type Mutator func(*domain.Recruitment)

// Outcome is the result of an action's network round trip. Confirmed, when
// set, is the server's authoritative entity and is merged like an update
// event.
type Outcome struct {
	Err       error
	Confirmed *domain.Recruitment
}

// pendingOp records one in-flight optimistic mutation.
type pendingOp struct {
	entityID uuid.UUID
	// prev is the rollback snapshot. Nil for provisional creates, where
	// rollback means removal.
	prev *domain.Recruitment
	// mutate re-applies the optimistic change after a snapshot seed.
	mutate Mutator
	// provisional is the locally-invented entity for an optimistic create.
	provisional *domain.Recruitment
	// superseded is set once a confirmed event for the entity arrives;
	// a failed action must not roll back past newer truth.
	superseded bool
}

// Engine owns the canonical recruitment map. Entities keep snapshot order,
// with later creations appended.
type Engine struct {
	entries map[uuid.UUID]domain.Recruitment
	order   []uuid.UUID

	pending      map[uuid.UUID]*pendingOp
	pendingOrder []uuid.UUID

	// tombstones are ids removed by delete events. A stale update must
	// not resurrect a deleted room; only a fresh create (a distinct
	// entity occurrence) or a snapshot reseed clears the tombstone.
	tombstones map[uuid.UUID]bool

	// integrity holds per-entity warnings for entities that failed
	// validation after a merge. The entity is kept; dropping it would
	// turn one malformed broadcast into data loss.
	integrity map[uuid.UUID]string

	// warn, if set, is called when a merged entity fails validation.
	warn func(id uuid.UUID, problem string)
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{
		entries:    make(map[uuid.UUID]domain.Recruitment),
		pending:    make(map[uuid.UUID]*pendingOp),
		tombstones: make(map[uuid.UUID]bool),
		integrity:  make(map[uuid.UUID]string),
	}
}

// SetWarnFunc installs the integrity warning hook.
func (e *Engine) SetWarnFunc(fn func(id uuid.UUID, problem string)) {
	e.warn = fn
}

// Get returns a copy of one entity.
func (e *Engine) Get(id uuid.UUID) (domain.Recruitment, bool) {
	r, ok := e.entries[id]
	if !ok {
		return domain.Recruitment{}, false
	}
	return r.Clone(), true
}

// Len returns the number of entities in the canonical map.
func (e *Engine) Len() int {
	return len(e.entries)
}

// Integrity returns the recorded warning for an entity, if any.
func (e *Engine) Integrity(id uuid.UUID) (string, bool) {
	msg, ok := e.integrity[id]
	return msg, ok
}

// Seed replaces the canonical map with an authoritative snapshot, then
// re-applies every pending optimistic mutation on top of it. An in-flight
// action may predate the snapshot's cutoff, so its local effect must
// survive the reseed; its rollback snapshot is refreshed against the new
// authoritative state.
func (e *Engine) Seed(list []domain.Recruitment) {
	e.entries = make(map[uuid.UUID]domain.Recruitment, len(list))
	e.order = e.order[:0]
	e.tombstones = make(map[uuid.UUID]bool)
	e.integrity = make(map[uuid.UUID]string)
	for _, r := range list {
		if _, dup := e.entries[r.ID]; dup {
			continue
		}
		c := r.Clone()
		e.entries[c.ID] = c
		e.order = append(e.order, c.ID)
		e.checkIntegrity(c)
	}

	for _, opID := range e.pendingOrder {
		op := e.pending[opID]
		op.superseded = false

		if op.provisional != nil {
			if _, taken := e.entries[op.entityID]; !taken {
				c := op.provisional.Clone()
				e.entries[c.ID] = c
				e.order = append(e.order, c.ID)
			}
			continue
		}

		cur, ok := e.entries[op.entityID]
		if !ok {
			// The snapshot no longer carries the entity; the action's
			// target is gone and a failure must not resurrect it.
			op.prev = nil
			op.superseded = true
			continue
		}
		prev := cur.Clone()
		op.prev = &prev
		next := cur.Clone()
		op.mutate(&next)
		e.entries[next.ID] = next
		e.checkIntegrity(next)
	}
}

// Apply merges one push event. Returns false when the event was discarded
// as stale. Create and update both upsert; an event no newer than the
// stored entity is a no-op, which makes redelivery and reordering across
// entities safe. Deletes always win regardless of timestamps.
func (e *Engine) Apply(ev push.Event) bool {
	switch ev.Kind {
	case push.KindCreated, push.KindUpdated:
		if ev.Recruitment == nil {
			return false
		}
		incoming := ev.Recruitment.Clone()
		if e.tombstones[incoming.ID] {
			if ev.Kind == push.KindUpdated {
				return false
			}
			delete(e.tombstones, incoming.ID)
		}
		if cur, ok := e.entries[incoming.ID]; ok {
			if !cur.UpdatedAt.Before(incoming.UpdatedAt) {
				return false
			}
			e.entries[incoming.ID] = incoming
		} else {
			e.entries[incoming.ID] = incoming
			e.order = append(e.order, incoming.ID)
		}
		e.markSuperseded(incoming.ID)
		e.checkIntegrity(incoming)
		return true

	case push.KindDeleted:
		e.tombstones[ev.RecruitmentID] = true
		e.markSuperseded(ev.RecruitmentID)
		if _, ok := e.entries[ev.RecruitmentID]; !ok {
			return false
		}
		e.remove(ev.RecruitmentID)
		return true
	}
	return false
}

// BeginOptimistic applies fn to a clone of an existing entity and records
// the pre-mutation snapshot under opID for rollback. Returns false when the
// entity is not in the canonical map.
func (e *Engine) BeginOptimistic(opID, entityID uuid.UUID, fn Mutator) bool {
	cur, ok := e.entries[entityID]
	if !ok {
		return false
	}
	prev := cur.Clone()
	next := cur.Clone()
	fn(&next)
	e.entries[entityID] = next
	e.checkIntegrity(next)

	e.pending[opID] = &pendingOp{entityID: entityID, prev: &prev, mutate: fn}
	e.pendingOrder = append(e.pendingOrder, opID)
	return true
}

// BeginProvisional inserts a locally-invented entity (an optimistic create)
// under a client-generated id. The entity is replaced by the server's own
// once the create resolves.
func (e *Engine) BeginProvisional(opID uuid.UUID, rec domain.Recruitment) {
	c := rec.Clone()
	e.entries[c.ID] = c
	e.order = append(e.order, c.ID)

	e.pending[opID] = &pendingOp{entityID: c.ID, provisional: &c}
	e.pendingOrder = append(e.pendingOrder, opID)
}

// ResolveOptimistic settles a pending mutation. On success the rollback
// snapshot is discarded and any server-returned entity merges through the
// normal event path; a provisional create is swapped for the confirmed one.
// On failure the pre-mutation snapshot is restored — unless a confirmed
// event arrived in between, in which case the confirmed state stands.
// Unknown opIDs are ignored, so a late resolution after a reset is harmless.
func (e *Engine) ResolveOptimistic(opID uuid.UUID, outcome Outcome) {
	op, ok := e.pending[opID]
	if !ok {
		return
	}
	delete(e.pending, opID)
	e.dropPendingOrder(opID)

	if outcome.Err == nil {
		if op.provisional != nil {
			// The server assigned its own id; retire the placeholder.
			// The confirmed entity merges as an update so that a delete
			// broadcast that beat this resolution still wins.
			e.remove(op.entityID)
			if outcome.Confirmed != nil {
				e.Apply(push.Event{Kind: push.KindUpdated, Recruitment: outcome.Confirmed})
			}
			return
		}
		if outcome.Confirmed != nil {
			e.Apply(push.Event{Kind: push.KindUpdated, Recruitment: outcome.Confirmed})
		}
		return
	}

	if op.superseded {
		return
	}
	if op.provisional != nil {
		e.remove(op.entityID)
		return
	}
	if op.prev != nil {
		e.entries[op.entityID] = op.prev.Clone()
		e.checkIntegrity(*op.prev)
	}
}

// PendingCount returns the number of unresolved optimistic mutations.
func (e *Engine) PendingCount() int {
	return len(e.pending)
}

func (e *Engine) markSuperseded(entityID uuid.UUID) {
	for _, op := range e.pending {
		if op.entityID == entityID {
			op.superseded = true
		}
	}
}

func (e *Engine) remove(id uuid.UUID) {
	if _, ok := e.entries[id]; !ok {
		return
	}
	delete(e.entries, id)
	delete(e.integrity, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

func (e *Engine) dropPendingOrder(opID uuid.UUID) {
	for i, id := range e.pendingOrder {
		if id == opID {
			e.pendingOrder = append(e.pendingOrder[:i], e.pendingOrder[i+1:]...)
			return
		}
	}
}

// checkIntegrity validates a just-merged entity and records (never hides)
// a corrupted state. Slot-count disagreement with the server is a warning
// too, since the participant list is what the client trusts.
func (e *Engine) checkIntegrity(r domain.Recruitment) {
	if err := r.Validate(); err != nil {
		e.integrity[r.ID] = err.Error()
		if e.warn != nil {
			e.warn(r.ID, err.Error())
		}
		return
	}
	if r.SlotMismatch() {
		msg := "server-reported slot count disagrees with participant list"
		e.integrity[r.ID] = msg
		if e.warn != nil {
			e.warn(r.ID, msg)
		}
		return
	}
	delete(e.integrity, r.ID)
}
