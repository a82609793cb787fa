package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/mappyas/gamematch/internal/browser"
	"github.com/mappyas/gamematch/internal/roster"
	"github.com/mappyas/gamematch/pkg/client"
	"github.com/mappyas/gamematch/pkg/domain"
	"github.com/mappyas/gamematch/pkg/push"
)

// snapshotMsg carries the authoritative listing from the API.
type snapshotMsg struct {
	session      int
	recruitments []domain.Recruitment
	err          error
}

// gamesLoadedMsg carries the game catalog for the filter cycle.
type gamesLoadedMsg struct {
	games []domain.Game
	err   error
}

// actionDoneMsg carries the settled outcome of a dispatched action.
// The App resolves it into the engine before forwarding it to views.
type actionDoneMsg struct {
	opID    uuid.UUID
	outcome roster.Outcome
}

// browseModel is the live recruitment listing. It owns the merge path:
// snapshot seeds, channel events and action outcomes all pass through its
// Update, which runs on the single bubbletea goroutine — the engine never
// sees a second writer.
type browseModel struct {
	client   *client.Client
	engine   *roster.Engine
	dispatch *roster.Dispatcher
	ctx      context.Context

	me    *domain.User
	games []domain.Game

	rows       []domain.Recruitment
	cursor     int
	gameFilter int // 0 = all games, otherwise index+1 into games

	loading       bool
	connected     bool
	everConnected bool
	status        string
	errMsg        string

	// pendingOps tracks ops this view started, for status display only;
	// the engine carries the authoritative pending state.
	pendingOps map[uuid.UUID]string

	// session guards against a stale snapshot resolving after a reset.
	session int

	width  int
	height int
}

func newBrowseModel(c *client.Client, e *roster.Engine, d *roster.Dispatcher, ctx context.Context) browseModel {
	return browseModel{
		client:     c,
		engine:     e,
		dispatch:   d,
		ctx:        ctx,
		games:      domain.DefaultGames,
		loading:    true,
		pendingOps: make(map[uuid.UUID]string),
	}
}

func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.loadSnapshot(), m.loadGames())
}

// loadSnapshot fetches the full listing. Used on mount and as the
// gap-recovery path after a channel reconnect — never as a routine refresh.
func (m browseModel) loadSnapshot() tea.Cmd {
	c := m.client
	ctx := m.ctx
	session := m.session
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		recs, err := c.ListRecruitments(ctx)
		return snapshotMsg{session: session, recruitments: recs, err: err}
	}
}

func (m browseModel) loadGames() tea.Cmd {
	c := m.client
	ctx := m.ctx
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		games, err := c.ListGames(ctx)
		return gamesLoadedMsg{games: games, err: err}
	}
}

// runOp performs an action's network round trip off the update loop.
func (m browseModel) runOp(op *roster.Op) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{opID: op.ID, outcome: op.Do(ctx)}
	}
}

func (m browseModel) Update(msg tea.Msg) (browseModel, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case meLoadedMsg:
		if msg.err == nil && msg.me != nil {
			m.me = msg.me
		}
		m.refresh()

	case snapshotMsg:
		if msg.session != m.session {
			// A reload from a previous mount generation; drop it.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.engine.Seed(msg.recruitments)
		m.refresh()

	case gamesLoadedMsg:
		if msg.err == nil && len(msg.games) > 0 {
			m.games = msg.games
		}

	case channelEventMsg:
		switch msg.ev.Kind {
		case push.KindConnected:
			wasDown := m.everConnected && !m.connected
			m.connected = true
			firstConnect := !m.everConnected
			m.everConnected = true
			// Any events published while the channel was down are lost;
			// the channel has no replay, so diff against a fresh snapshot.
			// Bumping the generation retires earlier in-flight snapshots:
			// one resolving late must not overwrite this fresher reload.
			if wasDown || (firstConnect && !m.loading) {
				m.session++
				return m, m.loadSnapshot()
			}
		case push.KindDisconnected:
			m.connected = false
		default:
			m.engine.Apply(msg.ev)
			m.refresh()
		}

	case actionDoneMsg:
		// App already resolved the outcome into the engine.
		if verb, mine := m.pendingOps[msg.opID]; mine {
			delete(m.pendingOps, msg.opID)
			if err := msg.outcome.Err; err != nil {
				switch {
				case client.IsUnauthenticated(err):
					m.status = "session expired — log in again"
				case client.IsRejection(err):
					m.status = fmt.Sprintf("%s refused: %v", verb, err)
				default:
					m.status = fmt.Sprintf("%s failed: network error", verb)
				}
			} else {
				m.status = verb + " confirmed"
			}
		}
		m.refresh()

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m browseModel) updateKeys(msg tea.KeyMsg) (browseModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.gameFilter = (m.gameFilter + 1) % (len(m.games) + 1)
		m.cursor = 0
		m.refresh()
	case "G":
		m.gameFilter = (m.gameFilter - 1 + len(m.games) + 1) % (len(m.games) + 1)
		m.cursor = 0
		m.refresh()
	case "enter", "J":
		return m.joinSelected()
	case "x", "L":
		return m.leaveSelected()
	case "c":
		if r, ok := m.selected(); ok {
			if err := clipboard.WriteAll(recruitmentURL(r.ID)); err == nil {
				m.status = "link copied"
			}
		}
	case "o":
		if r, ok := m.selected(); ok {
			browser.Open(recruitmentURL(r.ID)) //nolint:errcheck // best-effort browser open
		}
	}
	return m, nil
}

func (m browseModel) joinSelected() (browseModel, tea.Cmd) {
	r, ok := m.selected()
	if !ok || m.me == nil {
		return m, nil
	}
	op, err := m.dispatch.Join(r.ID, *m.me)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.pendingOps[op.ID] = "join"
	m.status = "joining " + truncStr(r.Title, 24) + "…"
	m.refresh()
	return m, m.runOp(op)
}

func (m browseModel) leaveSelected() (browseModel, tea.Cmd) {
	r, ok := m.selected()
	if !ok || m.me == nil {
		return m, nil
	}
	verb := "leave"
	if r.Owner.ID == m.me.ID {
		verb = "disband"
	}
	op, err := m.dispatch.Leave(r.ID, *m.me)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.pendingOps[op.ID] = verb
	m.status = verb + " pending…"
	m.refresh()
	return m, m.runOp(op)
}

func (m browseModel) selected() (domain.Recruitment, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return domain.Recruitment{}, false
	}
	return m.rows[m.cursor], true
}

// refresh recomputes the projected rows from the canonical map.
func (m *browseModel) refresh() {
	m.rows = m.engine.ByGame(m.filterGameID())
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m browseModel) filterGameID() string {
	if m.gameFilter == 0 || m.gameFilter > len(m.games) {
		return ""
	}
	return m.games[m.gameFilter-1].ID
}

func (m browseModel) filterLabel() string {
	if id := m.filterGameID(); id != "" {
		return domain.GameName(m.games, id)
	}
	return "all games"
}

func (m browseModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf(" %s  %s",
		accentStyle.Render(m.filterLabel()),
		metaStyle.Render(fmt.Sprintf("%d rooms", len(m.rows))))
	if m.everConnected && !m.connected {
		header += "  " + warnStyle.Render("reconnecting — listing may be stale")
	}
	b.WriteString(header + "\n\n")

	switch {
	case m.loading:
		b.WriteString(" " + dimStyle.Render("summoning the listing…") + "\n")
	case m.errMsg != "":
		b.WriteString(" " + errorStyle.Render("error: "+m.errMsg) + "\n")
	case len(m.rows) == 0:
		b.WriteString(" " + dimStyle.Render("no open rooms — press n to start one") + "\n")
	default:
		for i, r := range m.rows {
			b.WriteString(m.renderRow(r, i == m.cursor) + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n " + warnStyle.Render(m.status) + "\n")
	}

	return b.String()
}

func (m browseModel) renderRow(r domain.Recruitment, selected bool) string {
	cursor := "  "
	titleStyle := normalStyle
	if selected {
		cursor = accentStyle.Render("> ")
		titleStyle = selectedStyle
	}

	game := GameStyle(r.GameID).Render("[" + truncStr(gameLabel(m.games, r), 16) + "]")
	title := titleStyle.Render(truncStr(r.Title, 32))
	slots := dimStyle.Render(slotBar(r.FilledSlots(), r.MaxSlots))
	if r.IsFull() {
		slots = errorStyle.Render(slotBar(r.FilledSlots(), r.MaxSlots))
	}
	status := StatusStyle(string(r.Status)).Render(r.Status.Label())

	parts := []string{cursor + game, title, slots, status}
	if r.Rank != "" {
		parts = append(parts, metaStyle.Render(truncStr(r.Rank, 12)))
	}
	parts = append(parts, metaStyle.Render("by "+truncStr(r.Owner.Username, 16)))
	parts = append(parts, metaStyle.Render(formatTime(r.CreatedAt)))

	if m.me != nil && r.Involves(m.me.ID) {
		parts = append(parts, okStyle.Render("★ yours"))
	}
	if _, flagged := m.engine.Integrity(r.ID); flagged {
		parts = append(parts, warnStyle.Render("⚠"))
	}

	return strings.Join(parts, "  ")
}

// gameLabel prefers the server-sent display name, falling back to the
// catalog and finally the raw id.
func gameLabel(games []domain.Game, r domain.Recruitment) string {
	if r.GameName != "" {
		return r.GameName
	}
	return domain.GameName(games, r.GameID)
}

// recruitmentURL is the shareable web link for a room.
func recruitmentURL(id uuid.UUID) string {
	return "https://gamematch.gg/recruitment/" + id.String()
}
