package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a recruitment.
type Status string

const (
	StatusOpen      Status = "open"
	StatusOngoing   Status = "ongoing"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// Active reports whether a room in this status belongs in active listings.
func (s Status) Active() bool {
	return s == StatusOpen || s == StatusOngoing
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "recruiting"
	case StatusOngoing:
		return "in game"
	case StatusClosed:
		return "closed"
	case StatusCancelled:
		return "cancelled"
	default:
		return string(s)
	}
}

// Participant is one joined member of a recruitment, excluding the owner.
type Participant struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// Recruitment is a capacity-bounded party-finder room for one game.
// Participants are kept in join order and never include the owner;
// the owner always occupies the first slot.
type Recruitment struct {
	ID           uuid.UUID     `json:"id"`
	GameID       string        `json:"game_id"`
	GameName     string        `json:"game_name"`
	Icon         string        `json:"icon,omitempty"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Rank         string        `json:"rank,omitempty"` // free-text rank filter
	Owner        User          `json:"owner"`
	MaxSlots     int           `json:"max_slots"` // capacity including the owner, >= 2
	Participants []Participant `json:"participants"`
	VoiceChat    bool          `json:"voice_chat,omitempty"`
	Status       Status        `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	// CurrentSlots is the server-reported occupancy. The client never
	// trusts it — FilledSlots recomputes from the participant list, and a
	// mismatch is reported as an integrity warning.
	CurrentSlots int `json:"current_slots,omitempty"`
}

// FilledSlots returns the occupied slot count: the owner plus participants.
func (r Recruitment) FilledSlots() int {
	return 1 + len(r.Participants)
}

// IsFull reports whether the room has no free slots.
func (r Recruitment) IsFull() bool {
	return r.FilledSlots() >= r.MaxSlots
}

// HasParticipant reports whether userID is in the participant list.
func (r Recruitment) HasParticipant(userID uuid.UUID) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Involves reports whether userID is the owner or a participant.
func (r Recruitment) Involves(userID uuid.UUID) bool {
	return r.Owner.ID == userID || r.HasParticipant(userID)
}

// Clone returns a deep copy safe to mutate without aliasing the original's
// participant list.
func (r Recruitment) Clone() Recruitment {
	out := r
	if r.Participants != nil {
		out.Participants = make([]Participant, len(r.Participants))
		copy(out.Participants, r.Participants)
	}
	return out
}

// Validate checks the structural invariants of a recruitment: capacity is at
// least two, the participant list fits under it, no participant appears
// twice, and the owner is never also a participant. A non-nil error means
// the entity is corrupt; callers log it rather than drop the entity.
func (r Recruitment) Validate() error {
	if r.MaxSlots < 2 {
		return fmt.Errorf("recruitment %s: max_slots %d < 2", r.ID, r.MaxSlots)
	}
	if len(r.Participants) > r.MaxSlots-1 {
		return fmt.Errorf("recruitment %s: %d participants exceed %d open slots",
			r.ID, len(r.Participants), r.MaxSlots-1)
	}
	seen := make(map[uuid.UUID]bool, len(r.Participants))
	for _, p := range r.Participants {
		if p.UserID == r.Owner.ID {
			return fmt.Errorf("recruitment %s: owner %s listed as participant", r.ID, p.UserID)
		}
		if seen[p.UserID] {
			return fmt.Errorf("recruitment %s: duplicate participant %s", r.ID, p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}

// SlotMismatch reports whether the server-sent occupancy disagrees with the
// participant list. Zero means the server omitted the field.
func (r Recruitment) SlotMismatch() bool {
	return r.CurrentSlots != 0 && r.CurrentSlots != r.FilledSlots()
}
