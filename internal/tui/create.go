package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/mappyas/gamematch/internal/roster"
	"github.com/mappyas/gamematch/pkg/client"
	"github.com/mappyas/gamematch/pkg/domain"
)

type createField int

const (
	fieldGame createField = iota
	fieldTitle
	fieldRank
	fieldSlots
	fieldVoice
	numFields

	defaultSlots = 5
	minSlots     = 2
	maxSlots     = 10
)

// createModel is the new-room form. Submission goes through the dispatcher,
// so the provisional room appears in the listing before the server answers.
type createModel struct {
	dispatch *roster.Dispatcher
	run      func(*roster.Op) tea.Cmd

	me        *domain.User
	games     []domain.Game
	gameIdx   int
	title     string
	rank      string
	slots     int
	voice     bool
	focus     createField
	submitted bool
	pendingOp uuid.UUID
	errMsg    string
	statusMsg string
	width     int
	height    int
}

func newCreateModel(d *roster.Dispatcher, run func(*roster.Op) tea.Cmd) createModel {
	return createModel{
		dispatch: d,
		run:      run,
		games:    domain.DefaultGames,
		slots:    defaultSlots,
	}
}

func (m createModel) Init() tea.Cmd {
	return nil
}

func (m createModel) Update(msg tea.Msg) (createModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case meLoadedMsg:
		if msg.err == nil && msg.me != nil {
			m.me = msg.me
		}

	case gamesLoadedMsg:
		if msg.err == nil && len(msg.games) > 0 {
			m.games = msg.games
			if m.gameIdx >= len(m.games) {
				m.gameIdx = 0
			}
		}

	case actionDoneMsg:
		if msg.opID != m.pendingOp {
			return m, nil
		}
		m.submitted = false
		m.pendingOp = uuid.Nil
		if err := msg.outcome.Err; err != nil {
			m.statusMsg = "failed to open room"
			m.errMsg = err.Error()
		} else {
			m.statusMsg = "room is live — waiting for players"
			m.errMsg = ""
			m.title = ""
			m.rank = ""
			m.slots = defaultSlots
			m.voice = false
			m.focus = fieldGame
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m createModel) updateKeys(msg tea.KeyMsg) (createModel, tea.Cmd) {
	m.statusMsg = ""

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numFields) % numFields
	case "enter":
		if m.focus == fieldVoice {
			return m.submit()
		}
		m.focus = (m.focus + 1) % numFields
	default:
		return m.editFocused(msg.String()), nil
	}
	return m, nil
}

func (m createModel) editFocused(key string) createModel {
	switch m.focus {
	case fieldGame:
		if key == "h" || key == "l" {
			n := len(m.games)
			if n == 0 {
				return m
			}
			if key == "l" {
				m.gameIdx = (m.gameIdx + 1) % n
			} else {
				m.gameIdx = (m.gameIdx - 1 + n) % n
			}
		}
	case fieldTitle:
		m.title = editRune(m.title, key)
	case fieldRank:
		m.rank = editRune(m.rank, key)
	case fieldSlots:
		switch key {
		case "h", "-":
			if m.slots > minSlots {
				m.slots--
			}
		case "l", "+":
			if m.slots < maxSlots {
				m.slots++
			}
		}
	case fieldVoice:
		if key == "h" || key == "l" || key == " " {
			m.voice = !m.voice
		}
	}
	return m
}

func (m createModel) submit() (createModel, tea.Cmd) {
	if m.submitted || m.me == nil {
		return m, nil
	}
	if strings.TrimSpace(m.title) == "" {
		m.errMsg = "title is required"
		return m, nil
	}
	if len(m.games) == 0 {
		m.errMsg = "no games available"
		return m, nil
	}

	op, err := m.dispatch.Create(client.CreateRecruitmentRequest{
		GameID:    m.games[m.gameIdx].ID,
		Title:     strings.TrimSpace(m.title),
		Rank:      strings.TrimSpace(m.rank),
		MaxSlots:  m.slots,
		VoiceChat: m.voice,
	}, *m.me)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.submitted = true
	m.pendingOp = op.ID
	m.errMsg = ""
	m.statusMsg = "opening room…"
	return m, m.run(op)
}

func (m createModel) View() string {
	var b strings.Builder
	b.WriteString(" " + selectedStyle.Render("open a room") + "\n\n")

	game := "—"
	if len(m.games) > 0 {
		game = m.games[m.gameIdx].Name
	}
	voice := "off"
	if m.voice {
		voice = "on"
	}

	rows := []struct {
		field createField
		label string
		value string
		hint  string
	}{
		{fieldGame, "game", game, "h/l to cycle"},
		{fieldTitle, "title", m.title, ""},
		{fieldRank, "rank", m.rank, "optional"},
		{fieldSlots, "slots", strconv.Itoa(m.slots), fmt.Sprintf("incl. you, %d-%d", minSlots, maxSlots)},
		{fieldVoice, "voice", voice, "h/l to toggle"},
	}

	for _, row := range rows {
		label := metaStyle.Render(fmt.Sprintf(" %-6s", row.label))
		value := row.value
		if value == "" {
			value = inputPlaceholderStyle.Render("…")
		} else {
			value = normalStyle.Render(value)
		}
		if row.field == m.focus {
			label = accentStyle.Render(fmt.Sprintf(">%-6s", row.label))
			value = selectedStyle.Render(row.value)
			if row.value == "" {
				value = selectedStyle.Render("_")
			}
		}
		line := label + " " + value
		if row.hint != "" {
			line += "  " + inputPlaceholderStyle.Render(row.hint)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.errMsg) + "\n")
	}
	if m.statusMsg != "" {
		b.WriteString(" " + okStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}
