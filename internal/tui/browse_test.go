package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/mappyas/gamematch/internal/roster"
	"github.com/mappyas/gamematch/pkg/domain"
	"github.com/mappyas/gamematch/pkg/push"
)

func newTestBrowseModel() browseModel {
	engine := roster.NewEngine()
	dispatch := roster.NewDispatcher(engine, nil)
	m := newBrowseModel(nil, engine, dispatch, context.Background())
	m.width = 100
	m.height = 30
	return m
}

func makeTestRecruitment(title string, owner domain.User, maxSlots int) domain.Recruitment {
	return domain.Recruitment{
		ID:        uuid.New(),
		GameID:    "valorant",
		GameName:  "Valorant",
		Title:     title,
		Owner:     owner,
		MaxSlots:  maxSlots,
		Status:    domain.StatusOpen,
		CreatedAt: time.Now().Add(-10 * time.Minute),
		UpdatedAt: time.Now().Add(-10 * time.Minute),
	}
}

func makeTestUser(name string) domain.User {
	return domain.User{ID: uuid.New(), Username: name}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keySpecial(name string) tea.KeyMsg {
	switch name {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return keyRunes(name)
	}
}

func TestBrowseRendersSeededRooms(t *testing.T) {
	m := newTestBrowseModel()
	owner := makeTestUser("duelist_dan")
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{
		makeTestRecruitment("ranked grind to immortal", owner, 5),
		makeTestRecruitment("chill unrated", makeTestUser("casual_cat"), 5),
	}})

	view := m.View()
	if !strings.Contains(view, "ranked grind to immortal") {
		t.Errorf("expected seeded title in view, got:\n%s", view)
	}
	if !strings.Contains(view, "duelist_dan") {
		t.Errorf("expected owner name in view, got:\n%s", view)
	}
	if !strings.Contains(view, "2 rooms") {
		t.Errorf("expected room count in header, got:\n%s", view)
	}
}

func TestBrowseEmptyState(t *testing.T) {
	m := newTestBrowseModel()
	m, _ = m.Update(snapshotMsg{recruitments: nil})

	view := m.View()
	if !strings.Contains(view, "no open rooms") {
		t.Errorf("expected empty-state hint, got:\n%s", view)
	}
}

func TestBrowseSnapshotErrorShown(t *testing.T) {
	m := newTestBrowseModel()
	m, _ = m.Update(snapshotMsg{err: context.DeadlineExceeded})

	view := m.View()
	if !strings.Contains(view, "error:") {
		t.Errorf("expected error line in view, got:\n%s", view)
	}
}

func TestBrowseStaleSnapshotDropped(t *testing.T) {
	m := newTestBrowseModel()
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{
		makeTestRecruitment("current", makeTestUser("a"), 5),
	}})

	// A snapshot from a previous mount generation must not clobber state.
	m, _ = m.Update(snapshotMsg{session: 99, recruitments: nil})
	if len(m.rows) != 1 {
		t.Errorf("expected stale snapshot to be dropped, rows=%d", len(m.rows))
	}
}

func TestBrowseReloadRetiresEarlierSnapshots(t *testing.T) {
	m := newTestBrowseModel()
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{
		makeTestRecruitment("from mount", makeTestUser("a"), 5),
	}})

	// Each reconnect-triggered reload starts a new snapshot generation.
	m, _ = m.Update(channelEventMsg{ev: push.Event{Kind: push.KindConnected}})
	firstGen := m.session
	if firstGen == 0 {
		t.Fatal("expected a new generation after the first connect reload")
	}
	m, _ = m.Update(channelEventMsg{ev: push.Event{Kind: push.KindDisconnected}})
	m, _ = m.Update(channelEventMsg{ev: push.Event{Kind: push.KindConnected}})
	if m.session <= firstGen {
		t.Fatalf("session = %d after reconnect, want > %d", m.session, firstGen)
	}

	// A slow response from the earlier generation must not clobber state.
	m, _ = m.Update(snapshotMsg{session: firstGen, recruitments: nil})
	if len(m.rows) != 1 {
		t.Errorf("stale-generation snapshot applied, rows=%d", len(m.rows))
	}

	// The current generation's response lands normally.
	m, _ = m.Update(snapshotMsg{session: m.session, recruitments: []domain.Recruitment{
		makeTestRecruitment("post-gap", makeTestUser("b"), 5),
	}})
	if len(m.rows) != 1 || m.rows[0].Title != "post-gap" {
		t.Errorf("expected the reload snapshot to replace state, rows=%+v", m.rows)
	}
}

func TestBrowseChannelEventAddsRow(t *testing.T) {
	m := newTestBrowseModel()
	m, _ = m.Update(snapshotMsg{recruitments: nil})

	r := makeTestRecruitment("fresh room", makeTestUser("newbie"), 5)
	m, _ = m.Update(channelEventMsg{ev: push.Event{Kind: push.KindCreated, Recruitment: &r}})

	if !strings.Contains(m.View(), "fresh room") {
		t.Errorf("expected broadcast room in view, got:\n%s", m.View())
	}
}

func TestBrowseChannelDeleteRemovesRow(t *testing.T) {
	m := newTestBrowseModel()
	r := makeTestRecruitment("doomed", makeTestUser("owner"), 5)
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{r}})

	m, _ = m.Update(channelEventMsg{ev: push.Event{Kind: push.KindDeleted, RecruitmentID: r.ID}})
	if len(m.rows) != 0 {
		t.Errorf("expected delete broadcast to clear listing, rows=%d", len(m.rows))
	}
}

func TestBrowseReconnectTriggersReload(t *testing.T) {
	m := newTestBrowseModel()
	m, _ = m.Update(snapshotMsg{recruitments: nil})

	// First connect after the initial snapshot: events may have been missed
	// between the two, so a reload is issued.
	m, cmd := m.Update(channelEventMsg{ev: push.Event{Kind: push.KindConnected}})
	if !m.connected {
		t.Fatal("expected connected=true after connect event")
	}
	_ = cmd

	// Drop and reconnect: must reload to recover the gap. The model has a
	// nil client in tests, so assert via the connected transitions instead
	// of the returned command.
	m, _ = m.Update(channelEventMsg{ev: push.Event{Kind: push.KindDisconnected}})
	if m.connected {
		t.Fatal("expected connected=false after disconnect event")
	}
	m, _ = m.Update(channelEventMsg{ev: push.Event{Kind: push.KindConnected}})
	if !m.connected {
		t.Error("expected connected=true after reconnect")
	}
	if !m.everConnected {
		t.Error("expected everConnected=true after reconnect")
	}
}

func TestBrowseCursorMovement(t *testing.T) {
	m := newTestBrowseModel()
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{
		makeTestRecruitment("one", makeTestUser("a"), 5),
		makeTestRecruitment("two", makeTestUser("b"), 5),
	}})

	m, _ = m.Update(keyRunes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor=1 after j, got %d", m.cursor)
	}
	m, _ = m.Update(keyRunes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor clamped at 1, got %d", m.cursor)
	}
	m, _ = m.Update(keyRunes("k"))
	if m.cursor != 0 {
		t.Errorf("expected cursor=0 after k, got %d", m.cursor)
	}
}

func TestBrowseGameFilterCycles(t *testing.T) {
	m := newTestBrowseModel()
	va := makeTestRecruitment("valorant room", makeTestUser("a"), 5)
	lol := makeTestRecruitment("league room", makeTestUser("b"), 5)
	lol.GameID = "league-of-legends"
	lol.GameName = "League of Legends"
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{va, lol}})

	if m.filterGameID() != "" {
		t.Fatalf("expected no filter initially, got %q", m.filterGameID())
	}

	m, _ = m.Update(keyRunes("g"))
	if m.filterGameID() != "valorant" {
		t.Errorf("expected 'valorant' filter after first g, got %q", m.filterGameID())
	}
	if len(m.rows) != 1 || m.rows[0].Title != "valorant room" {
		t.Errorf("expected only the valorant room, got %d rows", len(m.rows))
	}

	// Cycle back with G
	m, _ = m.Update(keyRunes("G"))
	if m.filterGameID() != "" {
		t.Errorf("expected filter cleared after G, got %q", m.filterGameID())
	}
	if len(m.rows) != 2 {
		t.Errorf("expected both rooms with filter off, got %d", len(m.rows))
	}
}

func TestBrowseJoinKeyMakesRoomYours(t *testing.T) {
	m := newTestBrowseModel()
	me := makeTestUser("joiner")
	m, _ = m.Update(meLoadedMsg{me: &me})
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{
		makeTestRecruitment("join me", makeTestUser("host"), 5),
	}})

	m, cmd := m.Update(keyRunes("J"))
	if cmd == nil {
		t.Fatal("expected network command from join, got nil")
	}
	// Optimistic update lands immediately on the single writer goroutine.
	if !strings.Contains(m.View(), "★ yours") {
		t.Errorf("expected '★ yours' marker after optimistic join, got:\n%s", m.View())
	}
	if !strings.Contains(m.View(), "2/5") {
		t.Errorf("expected occupancy 2/5 after optimistic join, got:\n%s", m.View())
	}
}

func TestBrowseJoinFullRoomRejectedLocally(t *testing.T) {
	m := newTestBrowseModel()
	me := makeTestUser("latecomer")
	m, _ = m.Update(meLoadedMsg{me: &me})

	full := makeTestRecruitment("packed", makeTestUser("host"), 2)
	full.Participants = []domain.Participant{
		{UserID: uuid.New(), Username: "early", JoinedAt: time.Now()},
	}
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{full}})

	m, cmd := m.Update(keyRunes("J"))
	if cmd != nil {
		t.Error("expected no network command for a full room")
	}
	if m.status == "" {
		t.Error("expected a status message explaining the local rejection")
	}
}

func TestBrowseActionOutcomeSetsStatus(t *testing.T) {
	m := newTestBrowseModel()
	me := makeTestUser("joiner")
	m, _ = m.Update(meLoadedMsg{me: &me})
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{
		makeTestRecruitment("join me", makeTestUser("host"), 5),
	}})
	m, _ = m.Update(keyRunes("J"))

	var opID uuid.UUID
	for id := range m.pendingOps {
		opID = id
	}
	m, _ = m.Update(actionDoneMsg{opID: opID, outcome: roster.Outcome{}})
	if !strings.Contains(m.status, "confirmed") {
		t.Errorf("expected confirmation status, got %q", m.status)
	}
	if len(m.pendingOps) != 0 {
		t.Errorf("expected pending op cleared, got %d", len(m.pendingOps))
	}
}

func TestBrowseIntegrityFlagShown(t *testing.T) {
	m := newTestBrowseModel()
	bad := makeTestRecruitment("lopsided", makeTestUser("host"), 5)
	bad.CurrentSlots = 4 // disagrees with the one-member list
	m, _ = m.Update(snapshotMsg{recruitments: []domain.Recruitment{bad}})

	if !strings.Contains(m.View(), "⚠") {
		t.Errorf("expected integrity marker in view, got:\n%s", m.View())
	}
}
