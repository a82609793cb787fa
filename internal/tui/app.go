package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mappyas/gamematch/internal/roster"
	"github.com/mappyas/gamematch/pkg/client"
	"github.com/mappyas/gamematch/pkg/domain"
	"github.com/mappyas/gamematch/pkg/push"
)

type view int

const (
	viewBrowse view = iota
	viewMine
	viewCreate
)

// meLoadedMsg carries the authenticated player's profile.
type meLoadedMsg struct {
	me  *domain.User
	err error
}

// channelEventMsg carries one inbound push event.
type channelEventMsg struct {
	ev push.Event
}

// channelClosedMsg signals the push event stream has ended.
type channelClosedMsg struct{}

// App is the root Bubbletea model. Its Update loop is the single
// serialization point: the roster engine and dispatcher are only ever
// touched from here, so the merge logic needs no locks.
type App struct {
	client   *client.Client
	engine   *roster.Engine
	dispatch *roster.Dispatcher
	channel  *push.Channel

	ctx    context.Context
	cancel context.CancelFunc

	view      view
	browse    browseModel
	mine      mineModel
	create    createModel
	me        *domain.User
	connected bool
	width     int
	height    int
	frame     int // logo shimmer animation frame
}

// NewApp creates the TUI application around a REST client and push channel.
func NewApp(c *client.Client, ch *push.Channel) App {
	ctx, cancel := context.WithCancel(context.Background())
	engine := roster.NewEngine()
	dispatch := roster.NewDispatcher(engine, c)

	a := App{
		client:   c,
		engine:   engine,
		dispatch: dispatch,
		channel:  ch,
		ctx:      ctx,
		cancel:   cancel,
	}
	a.browse = newBrowseModel(c, engine, dispatch, ctx)
	a.mine = newMineModel(engine, dispatch, a.browse.runOp)
	a.create = newCreateModel(dispatch, a.browse.runOp)
	return a
}

func (a App) Init() tea.Cmd {
	go a.channel.Run(a.ctx)
	return tea.Batch(a.browse.Init(), a.loadMe(), a.listenChannel(), shimmerTickCmd())
}

func (a App) loadMe() tea.Cmd {
	c := a.client
	ctx := a.ctx
	return func() tea.Msg {
		me, err := c.GetMe(ctx)
		return meLoadedMsg{me: me, err: err}
	}
}

// listenChannel waits for the next push event. Re-armed after every
// delivery so events keep flowing through the update loop one at a time.
func (a App) listenChannel() tea.Cmd {
	events := a.channel.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return channelClosedMsg{}
		}
		return channelEventMsg{ev: ev}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.browse, _ = a.browse.Update(bodyMsg)
		a.mine, _ = a.mine.Update(bodyMsg)
		a.create, _ = a.create.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case meLoadedMsg:
		if msg.err == nil && msg.me != nil {
			a.me = msg.me
		}
		a.browse, _ = a.browse.Update(msg)
		a.mine, _ = a.mine.Update(msg)
		a.create, _ = a.create.Update(msg)
		return a, nil

	case channelEventMsg:
		switch msg.ev.Kind {
		case push.KindConnected:
			a.connected = true
		case push.KindDisconnected:
			a.connected = false
		}
		// The browse model owns the merge path; it sees every event
		// regardless of which tab is showing.
		var cmd tea.Cmd
		a.browse, cmd = a.browse.Update(msg)
		return a, tea.Batch(cmd, a.listenChannel())

	case channelClosedMsg:
		return a, nil

	case gamesLoadedMsg:
		a.browse, _ = a.browse.Update(msg)
		a.create, _ = a.create.Update(msg)
		return a, nil

	case snapshotMsg:
		var cmd tea.Cmd
		a.browse, cmd = a.browse.Update(msg)
		return a, cmd

	case actionDoneMsg:
		// Settle the op on the serialization point, then let the views
		// report it.
		a.dispatch.Resolve(msg.opID, msg.outcome)
		a.browse, _ = a.browse.Update(msg)
		a.mine, _ = a.mine.Update(msg)
		a.create, _ = a.create.Update(msg)
		return a, nil

	case tea.KeyMsg:
		if !a.isEditing() {
			switch msg.String() {
			case "q", "ctrl+c":
				a.cancel()
				return a, tea.Quit
			case "1":
				a.view = viewBrowse
				return a, nil
			case "2":
				a.view = viewMine
				return a, nil
			case "n":
				if a.view != viewCreate {
					a.view = viewCreate
					return a, nil
				}
			case "esc":
				if a.view == viewCreate {
					a.view = viewBrowse
					return a, nil
				}
			}
		} else if msg.String() == "esc" {
			a.view = viewBrowse
			return a, nil
		} else if msg.String() == "ctrl+c" {
			a.cancel()
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewBrowse:
		a.browse, cmd = a.browse.Update(msg)
	case viewMine:
		a.mine, cmd = a.mine.Update(msg)
	case viewCreate:
		a.create, cmd = a.create.Update(msg)
	}
	return a, cmd
}

// isEditing reports whether a view currently captures printable keys.
func (a App) isEditing() bool {
	return a.view == viewCreate
}

func (a App) View() string {
	// Header: centered shimmer logo + identity/connection line
	logo := renderShimmerLogo(a.frame)
	logoWidth := lipgloss.Width(logo)
	logoPad := (a.width - logoWidth) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	var metaParts []string
	if a.me != nil {
		metaParts = append(metaParts, a.me.Username)
	}
	if a.connected {
		metaParts = append(metaParts, connectedDotStyle.Render("●")+" live")
	} else {
		metaParts = append(metaParts, disconnectedDotStyle.Render("○")+" offline")
	}
	meta := metaStyle.Render(strings.Join(metaParts, " · "))
	metaPad := (a.width - lipgloss.Width(meta)) / 2
	if metaPad < 0 {
		metaPad = 0
	}
	header += "\n" + strings.Repeat(" ", metaPad) + meta

	// Tab bar
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Rooms", viewBrowse},
		{"2", "My Room", viewMine},
	}
	var tabBar strings.Builder
	tabBar.WriteString(" ")
	for i, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		tabBar.WriteString(label)
		if i < len(tabs)-1 {
			tabBar.WriteString("   ")
		}
	}
	if a.view == viewCreate {
		tabBar.WriteString("   " + accentStyle.Render("n") + " " + selectedStyle.Underline(true).Render("New"))
	} else {
		tabBar.WriteString("   " + metaStyle.Render("n") + " " + dimStyle.Render("New"))
	}

	// Body + help
	var body, help string
	switch a.view {
	case viewBrowse:
		body = a.browse.View()
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("g", "game") + "  " +
			helpEntry("enter", "join") + "  " + helpEntry("x", "leave") + "  " +
			helpEntry("c", "copy link") + "  " + helpEntry("o", "open") + "  " +
			helpEntry("n", "new") + "  " + helpEntry("q", "quit")
	case viewMine:
		body = a.mine.View()
		help = " " + helpEntry("1/2", "tabs") + "  " + a.mine.helpKeys() + "  " + helpEntry("q", "quit")
	case viewCreate:
		body = a.create.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "open room") + "  " + helpEntry("esc", "cancel")
	}

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}
