package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/mappyas/gamematch/internal/roster"
	"github.com/mappyas/gamematch/pkg/domain"
)

// mineModel shows the single active room the player owns or has joined.
// It reads the engine live at render time and never mutates it directly —
// leave/disband go through the dispatcher like every other action.
type mineModel struct {
	engine   *roster.Engine
	dispatch *roster.Dispatcher
	run      func(*roster.Op) tea.Cmd

	me *domain.User
	// pendingOp is the leave/disband this view started; outcomes of ops
	// begun elsewhere are not its status to report.
	pendingOp uuid.UUID
	status    string
	width     int
	height    int
}

func newMineModel(e *roster.Engine, d *roster.Dispatcher, run func(*roster.Op) tea.Cmd) mineModel {
	return mineModel{engine: e, dispatch: d, run: run}
}

func (m mineModel) Init() tea.Cmd {
	return nil
}

func (m mineModel) Update(msg tea.Msg) (mineModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case meLoadedMsg:
		if msg.err == nil && msg.me != nil {
			m.me = msg.me
		}

	case actionDoneMsg:
		if msg.opID != m.pendingOp {
			return m, nil
		}
		m.pendingOp = uuid.Nil
		if msg.outcome.Err != nil {
			m.status = msg.outcome.Err.Error()
		} else {
			m.status = ""
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "x", "L":
			if m.me == nil {
				return m, nil
			}
			mine := m.engine.Mine(m.me.ID)
			if mine == nil {
				return m, nil
			}
			op, err := m.dispatch.Leave(mine.ID, *m.me)
			if err != nil {
				m.status = err.Error()
				return m, nil
			}
			m.pendingOp = op.ID
			if mine.Owner.ID == m.me.ID {
				m.status = "disbanding…"
			} else {
				m.status = "leaving…"
			}
			return m, m.run(op)
		case "c":
			if m.me == nil {
				return m, nil
			}
			if mine := m.engine.Mine(m.me.ID); mine != nil {
				if err := clipboard.WriteAll(recruitmentURL(mine.ID)); err == nil {
					m.status = "link copied"
				}
			}
		}
	}
	return m, nil
}

func (m mineModel) View() string {
	if m.me == nil {
		return " " + dimStyle.Render("loading profile…") + "\n"
	}
	mine := m.engine.Mine(m.me.ID)
	if mine == nil {
		return " " + dimStyle.Render("you are not in a room — press 1 to browse, n to create") + "\n"
	}

	var b strings.Builder
	owner := mine.Owner.ID == m.me.ID

	b.WriteString(" " + selectedStyle.Render(mine.Title) + "\n")
	b.WriteString(" " + GameStyle(mine.GameID).Render(gameLabel(nil, *mine)) +
		"  " + StatusStyle(string(mine.Status)).Render(mine.Status.Label()) +
		"  " + dimStyle.Render(slotBar(mine.FilledSlots(), mine.MaxSlots)) + "\n")
	if mine.Rank != "" {
		b.WriteString(" " + metaStyle.Render("rank: "+mine.Rank) + "\n")
	}
	if mine.Description != "" {
		b.WriteString(" " + normalStyle.Render(truncStr(mine.Description, 72)) + "\n")
	}
	b.WriteString("\n")

	role := metaStyle.Render(" (owner)")
	b.WriteString(" " + normalStyle.Render(mine.Owner.Username) + role + "\n")
	for _, p := range mine.Participants {
		b.WriteString(" " + normalStyle.Render(p.Username) +
			"  " + metaStyle.Render(formatTime(p.JoinedAt)) + "\n")
	}
	for i := mine.FilledSlots(); i < mine.MaxSlots; i++ {
		b.WriteString(" " + inputPlaceholderStyle.Render("empty slot") + "\n")
	}

	b.WriteString("\n")
	if owner {
		b.WriteString(" " + dimStyle.Render(fmt.Sprintf("x disbands the room for all %d members", mine.FilledSlots())) + "\n")
	}
	if m.status != "" {
		b.WriteString(" " + warnStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m mineModel) helpKeys() string {
	return helpEntry("x", "leave/disband") + "  " + helpEntry("c", "copy link")
}
