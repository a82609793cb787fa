package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/mappyas/gamematch/internal/roster"
	"github.com/mappyas/gamematch/pkg/domain"
)

func stubRun(op *roster.Op) tea.Cmd {
	return func() tea.Msg { return nil }
}

func newTestMineModel() (mineModel, *roster.Engine) {
	engine := roster.NewEngine()
	dispatch := roster.NewDispatcher(engine, nil)
	m := newMineModel(engine, dispatch, stubRun)
	m.width = 100
	m.height = 30
	return m, engine
}

func TestMineEmptyState(t *testing.T) {
	m, _ := newTestMineModel()
	me := makeTestUser("loner")
	m, _ = m.Update(meLoadedMsg{me: &me})

	view := m.View()
	if !strings.Contains(view, "not in a room") {
		t.Errorf("expected empty-state hint, got:\n%s", view)
	}
}

func TestMineShowsOwnedRoom(t *testing.T) {
	m, engine := newTestMineModel()
	me := makeTestUser("captain")
	m, _ = m.Update(meLoadedMsg{me: &me})

	r := makeTestRecruitment("flex stack", me, 5)
	r.Rank = "diamond+"
	r.Participants = []domain.Participant{
		{UserID: makeTestUser("mate").ID, Username: "mate", JoinedAt: time.Now()},
	}
	engine.Seed([]domain.Recruitment{r})

	view := m.View()
	if !strings.Contains(view, "flex stack") {
		t.Errorf("expected room title, got:\n%s", view)
	}
	if !strings.Contains(view, "(owner)") {
		t.Errorf("expected owner marker, got:\n%s", view)
	}
	if !strings.Contains(view, "mate") {
		t.Errorf("expected participant name, got:\n%s", view)
	}
	if !strings.Contains(view, "diamond+") {
		t.Errorf("expected rank line, got:\n%s", view)
	}
	if !strings.Contains(view, "disbands the room") {
		t.Errorf("expected disband warning for owner, got:\n%s", view)
	}
	if !strings.Contains(view, "empty slot") {
		t.Errorf("expected empty slot placeholders, got:\n%s", view)
	}
}

func TestMineLeaveAsParticipant(t *testing.T) {
	m, engine := newTestMineModel()
	me := makeTestUser("member")
	m, _ = m.Update(meLoadedMsg{me: &me})

	r := makeTestRecruitment("someone else's room", makeTestUser("host"), 5)
	r.Participants = []domain.Participant{
		{UserID: me.ID, Username: me.Username, JoinedAt: time.Now()},
	}
	engine.Seed([]domain.Recruitment{r})

	m, cmd := m.Update(keyRunes("x"))
	if cmd == nil {
		t.Fatal("expected network command from leave, got nil")
	}
	if m.status != "leaving…" {
		t.Errorf("expected leave status, got %q", m.status)
	}
	// The optimistic update removed us, so the view falls back to empty.
	if !strings.Contains(m.View(), "not in a room") {
		t.Errorf("expected empty state after optimistic leave, got:\n%s", m.View())
	}
}

func TestMineLeaveAsOwnerIsDisband(t *testing.T) {
	m, engine := newTestMineModel()
	me := makeTestUser("captain")
	m, _ = m.Update(meLoadedMsg{me: &me})
	engine.Seed([]domain.Recruitment{makeTestRecruitment("my room", me, 5)})

	m, cmd := m.Update(keyRunes("x"))
	if cmd == nil {
		t.Fatal("expected network command from disband, got nil")
	}
	if m.status != "disbanding…" {
		t.Errorf("expected disband status, got %q", m.status)
	}
}

func TestMineLeaveWithoutRoomIsNoop(t *testing.T) {
	m, _ := newTestMineModel()
	me := makeTestUser("loner")
	m, _ = m.Update(meLoadedMsg{me: &me})

	_, cmd := m.Update(keyRunes("x"))
	if cmd != nil {
		t.Error("expected no command when not in a room")
	}
}

func TestMineOwnActionErrorShown(t *testing.T) {
	m, engine := newTestMineModel()
	me := makeTestUser("member")
	m, _ = m.Update(meLoadedMsg{me: &me})

	r := makeTestRecruitment("room", makeTestUser("host"), 5)
	r.Participants = []domain.Participant{
		{UserID: me.ID, Username: me.Username, JoinedAt: time.Now()},
	}
	engine.Seed([]domain.Recruitment{r})

	m, _ = m.Update(keyRunes("x"))
	m, _ = m.Update(actionDoneMsg{opID: m.pendingOp, outcome: roster.Outcome{Err: roster.ErrInFlight}})
	if m.status == "" {
		t.Error("expected error surfaced in status")
	}
}

func TestMineIgnoresForeignOutcome(t *testing.T) {
	m, engine := newTestMineModel()
	me := makeTestUser("member")
	m, _ = m.Update(meLoadedMsg{me: &me})

	r := makeTestRecruitment("room", makeTestUser("host"), 5)
	r.Participants = []domain.Participant{
		{UserID: me.ID, Username: me.Username, JoinedAt: time.Now()},
	}
	engine.Seed([]domain.Recruitment{r})

	m, _ = m.Update(keyRunes("x"))
	if m.status != "leaving…" {
		t.Fatalf("status = %q before foreign outcome", m.status)
	}

	// A browse-side join failing elsewhere is not this view's news.
	m, _ = m.Update(actionDoneMsg{opID: uuid.New(), outcome: roster.Outcome{Err: roster.ErrRoomFull}})
	if m.status != "leaving…" {
		t.Errorf("status = %q, want the view's own pending status kept", m.status)
	}
	if m.pendingOp == uuid.Nil {
		t.Error("foreign outcome cleared the view's pending op")
	}
}
