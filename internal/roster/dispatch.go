package roster

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mappyas/gamematch/pkg/client"
	"github.com/mappyas/gamematch/pkg/domain"
)

// Local pre-check rejections. These are UX short-circuits only — the server
// re-validates everything and its refusal is what actually counts.
var (
	ErrInFlight    = errors.New("action already in flight for this room")
	ErrRoomFull    = errors.New("recruitment is full")
	ErrJoined      = errors.New("already in this recruitment")
	ErrNotJoined   = errors.New("not in this recruitment")
	ErrRoomClosed  = errors.New("recruitment is no longer active")
	ErrUnknownRoom = errors.New("unknown recruitment")
	ErrBadRequest  = errors.New("invalid recruitment payload")
)

// Op is one dispatched action. Do performs the network round trip and must
// run off the serialization point; its Outcome is fed back through
// Dispatcher.Resolve on the serialization point.
type Op struct {
	ID uuid.UUID
	Do func(ctx context.Context) Outcome
}

// Dispatcher issues create/join/leave actions: local pre-check, optimistic
// engine mutation, REST call, resolve. It also guards against duplicate
// in-flight actions per (room, user) pair so rapid repeated keypresses
// issue exactly one request.
type Dispatcher struct {
	engine   *Engine
	api      *client.Client
	inflight map[string]uuid.UUID
}

// NewDispatcher creates a dispatcher bound to an engine and API client.
func NewDispatcher(e *Engine, api *client.Client) *Dispatcher {
	return &Dispatcher{
		engine:   e,
		api:      api,
		inflight: make(map[string]uuid.UUID),
	}
}

// Join dispatches a join for user on the given room. The optimistic
// mutation appends the user to the participant list immediately.
func (d *Dispatcher) Join(recruitmentID uuid.UUID, user domain.User) (*Op, error) {
	r, ok := d.engine.Get(recruitmentID)
	if !ok {
		return nil, ErrUnknownRoom
	}
	if !r.Status.Active() {
		return nil, ErrRoomClosed
	}
	if r.Involves(user.ID) {
		return nil, ErrJoined
	}
	if r.IsFull() {
		return nil, ErrRoomFull
	}
	key := pairKey(recruitmentID, user.ID)
	if _, busy := d.inflight[key]; busy {
		return nil, ErrInFlight
	}

	opID := uuid.New()
	// Idempotent: a gap-recovery snapshot may already carry this join if the
	// server committed it before the snapshot was cut, and Seed re-applies
	// pending mutators on top of the reseed.
	d.engine.BeginOptimistic(opID, recruitmentID, func(r *domain.Recruitment) {
		if !r.HasParticipant(user.ID) {
			r.Participants = append(r.Participants, domain.Participant{
				UserID:   user.ID,
				Username: user.Username,
				Avatar:   user.Avatar,
				JoinedAt: time.Now(),
			})
		}
		r.CurrentSlots = r.FilledSlots()
	})
	d.inflight[key] = opID

	api := d.api
	return &Op{ID: opID, Do: func(ctx context.Context) Outcome {
		rec, err := api.JoinRecruitment(ctx, recruitmentID, user)
		return Outcome{Err: err, Confirmed: rec}
	}}, nil
}

// Leave dispatches a leave for user on the given room. A participant leave
// shrinks the participant list; an owner leave is a disband — the room is
// destroyed for everyone, so the optimistic mutation pulls the whole entity
// out of active listings and the server confirms with a delete broadcast.
func (d *Dispatcher) Leave(recruitmentID uuid.UUID, user domain.User) (*Op, error) {
	r, ok := d.engine.Get(recruitmentID)
	if !ok {
		return nil, ErrUnknownRoom
	}
	isOwner := r.Owner.ID == user.ID
	if !isOwner && !r.HasParticipant(user.ID) {
		return nil, ErrNotJoined
	}
	key := pairKey(recruitmentID, user.ID)
	if _, busy := d.inflight[key]; busy {
		return nil, ErrInFlight
	}

	opID := uuid.New()
	if isOwner {
		d.engine.BeginOptimistic(opID, recruitmentID, func(r *domain.Recruitment) {
			r.Status = domain.StatusCancelled
		})
	} else {
		d.engine.BeginOptimistic(opID, recruitmentID, func(r *domain.Recruitment) {
			kept := r.Participants[:0]
			for _, p := range r.Participants {
				if p.UserID != user.ID {
					kept = append(kept, p)
				}
			}
			r.Participants = kept
			r.CurrentSlots = r.FilledSlots()
		})
	}
	d.inflight[key] = opID

	api := d.api
	return &Op{ID: opID, Do: func(ctx context.Context) Outcome {
		rec, err := api.LeaveRecruitment(ctx, recruitmentID, user.ID)
		return Outcome{Err: err, Confirmed: rec}
	}}, nil
}

// Create dispatches a room creation. A provisional entity under a client
// uuid shows up in the listing immediately and is swapped for the server's
// entity when the call resolves.
func (d *Dispatcher) Create(req client.CreateRecruitmentRequest, owner domain.User) (*Op, error) {
	if req.GameID == "" || req.Title == "" || req.MaxSlots < 2 {
		return nil, ErrBadRequest
	}
	key := "create:" + owner.ID.String()
	if _, busy := d.inflight[key]; busy {
		return nil, ErrInFlight
	}

	now := time.Now()
	opID := uuid.New()
	d.engine.BeginProvisional(opID, domain.Recruitment{
		ID:          uuid.New(),
		GameID:      req.GameID,
		GameName:    req.GameID,
		Title:       req.Title,
		Description: req.Description,
		Rank:        req.Rank,
		Owner:       owner,
		MaxSlots:    req.MaxSlots,
		VoiceChat:   req.VoiceChat,
		Status:      domain.StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	d.inflight[key] = opID

	api := d.api
	return &Op{ID: opID, Do: func(ctx context.Context) Outcome {
		rec, err := api.CreateRecruitment(ctx, req)
		return Outcome{Err: err, Confirmed: rec}
	}}, nil
}

// Resolve settles an op: clears its in-flight guard and applies the outcome
// to the engine. Must be called from the serialization point.
func (d *Dispatcher) Resolve(opID uuid.UUID, outcome Outcome) {
	for key, id := range d.inflight {
		if id == opID {
			delete(d.inflight, key)
		}
	}
	d.engine.ResolveOptimistic(opID, outcome)
}

func pairKey(recruitmentID, userID uuid.UUID) string {
	return recruitmentID.String() + ":" + userID.String()
}
