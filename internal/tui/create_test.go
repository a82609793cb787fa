package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/mappyas/gamematch/internal/roster"
)

func newTestCreateModel() (createModel, *roster.Engine) {
	engine := roster.NewEngine()
	dispatch := roster.NewDispatcher(engine, nil)
	m := newCreateModel(dispatch, stubRun)
	m.width = 100
	m.height = 30
	me := makeTestUser("founder")
	m, _ = m.Update(meLoadedMsg{me: &me})
	return m, engine
}

func typeString(m createModel, s string) createModel {
	for _, r := range s {
		m, _ = m.Update(keyRunes(string(r)))
	}
	return m
}

func TestCreateFieldNavigation(t *testing.T) {
	m, _ := newTestCreateModel()
	if m.focus != fieldGame {
		t.Fatalf("expected initial focus on game, got %d", m.focus)
	}
	m, _ = m.Update(keySpecial("tab"))
	if m.focus != fieldTitle {
		t.Errorf("expected focus on title after tab, got %d", m.focus)
	}
	m, _ = m.Update(keySpecial("shift+tab"))
	if m.focus != fieldGame {
		t.Errorf("expected focus back on game after shift+tab, got %d", m.focus)
	}
}

func TestCreateGameCycle(t *testing.T) {
	m, _ := newTestCreateModel()
	first := m.games[m.gameIdx].ID
	m, _ = m.Update(keyRunes("l"))
	if m.games[m.gameIdx].ID == first {
		t.Error("expected l to advance the game selection")
	}
	m, _ = m.Update(keyRunes("h"))
	if m.games[m.gameIdx].ID != first {
		t.Error("expected h to cycle back to the first game")
	}
}

func TestCreateSlotBounds(t *testing.T) {
	m, _ := newTestCreateModel()
	m.focus = fieldSlots
	for i := 0; i < 20; i++ {
		m, _ = m.Update(keyRunes("l"))
	}
	if m.slots != maxSlots {
		t.Errorf("expected slots clamped at %d, got %d", maxSlots, m.slots)
	}
	for i := 0; i < 20; i++ {
		m, _ = m.Update(keyRunes("h"))
	}
	if m.slots != minSlots {
		t.Errorf("expected slots clamped at %d, got %d", minSlots, m.slots)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	m, _ := newTestCreateModel()
	m, cmd := m.Update(keySpecial("ctrl+s"))
	if cmd != nil {
		t.Error("expected no command when title is empty")
	}
	if !strings.Contains(m.View(), "title is required") {
		t.Errorf("expected validation message, got:\n%s", m.View())
	}
}

func TestCreateSubmitMakesProvisionalRoom(t *testing.T) {
	m, engine := newTestCreateModel()
	m.focus = fieldTitle
	m = typeString(m, "weekend raid group")

	m, cmd := m.Update(keySpecial("ctrl+s"))
	if cmd == nil {
		t.Fatal("expected network command from submit, got nil")
	}
	if !m.submitted {
		t.Error("expected submitted=true while the call is pending")
	}
	if m.pendingOp == uuid.Nil {
		t.Error("expected a pending op id")
	}

	// The provisional room is already visible to projections.
	rooms := engine.Active()
	if len(rooms) != 1 {
		t.Fatalf("expected 1 provisional room, got %d", len(rooms))
	}
	if rooms[0].Title != "weekend raid group" {
		t.Errorf("unexpected provisional title %q", rooms[0].Title)
	}
	if rooms[0].Owner.Username != "founder" {
		t.Errorf("expected provisional owner 'founder', got %q", rooms[0].Owner.Username)
	}

	// A second submit while pending is swallowed.
	_, cmd = m.Update(keySpecial("ctrl+s"))
	if cmd != nil {
		t.Error("expected duplicate submit to be a no-op")
	}
}

func TestCreateSuccessResetsForm(t *testing.T) {
	m, _ := newTestCreateModel()
	m.focus = fieldTitle
	m = typeString(m, "short lived")
	m, _ = m.Update(keySpecial("ctrl+s"))

	m, _ = m.Update(actionDoneMsg{opID: m.pendingOp, outcome: roster.Outcome{}})
	if m.submitted {
		t.Error("expected submitted cleared after success")
	}
	if m.title != "" {
		t.Errorf("expected title reset, got %q", m.title)
	}
	if !strings.Contains(m.View(), "room is live") {
		t.Errorf("expected success status, got:\n%s", m.View())
	}
}

func TestCreateFailureKeepsForm(t *testing.T) {
	m, _ := newTestCreateModel()
	m.focus = fieldTitle
	m = typeString(m, "doomed room")
	m, _ = m.Update(keySpecial("ctrl+s"))

	m, _ = m.Update(actionDoneMsg{opID: m.pendingOp, outcome: roster.Outcome{Err: errors.New("boom")}})
	if m.title != "doomed room" {
		t.Errorf("expected title preserved after failure, got %q", m.title)
	}
	if !strings.Contains(m.View(), "failed to open room") {
		t.Errorf("expected failure status, got:\n%s", m.View())
	}
}

func TestCreateIgnoresForeignOutcome(t *testing.T) {
	m, _ := newTestCreateModel()
	m.focus = fieldTitle
	m = typeString(m, "mine")
	m, _ = m.Update(keySpecial("ctrl+s"))

	// Someone else's op settling must not reset this form.
	m, _ = m.Update(actionDoneMsg{opID: uuid.New(), outcome: roster.Outcome{}})
	if !m.submitted {
		t.Error("expected form still pending after unrelated outcome")
	}
}

func TestCreateViewShowsFields(t *testing.T) {
	m, _ := newTestCreateModel()
	view := m.View()
	for _, want := range []string{"game", "title", "rank", "slots", "voice"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q field in view, got:\n%s", want, view)
		}
	}
}
