package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/mappyas/gamematch/internal/tui"
	"github.com/mappyas/gamematch/pkg/client"
	"github.com/mappyas/gamematch/pkg/push"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// tokenFilePath returns ~/.gamematch/token.
func tokenFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".gamematch", "token"), nil
}

// readToken returns the auth token using precedence: env var > file > empty.
func readToken() string {
	if tok := os.Getenv("GAMEMATCH_TOKEN"); tok != "" {
		return tok
	}
	path, err := tokenFilePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// deriveWSURL turns the API base URL into the recruitment stream endpoint,
// unless GAMEMATCH_WS_URL overrides it outright.
func deriveWSURL(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/recruitments/"
	return u.String()
}

func run() error {
	// Optional .env for local development; real deployments use the
	// environment directly.
	godotenv.Load() //nolint:errcheck

	apiURL := os.Getenv("GAMEMATCH_API_URL")
	if apiURL == "" {
		apiURL = "https://api.gamematch.gg"
	}
	wsURL := os.Getenv("GAMEMATCH_WS_URL")
	if wsURL == "" {
		wsURL = deriveWSURL(apiURL)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("gamematch " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "logout":
			return runLogout()
		}
	}

	token := readToken()
	if token == "" {
		printWelcome()
		return nil
	}
	c := client.New(apiURL, token)
	// Only force re-login on actual auth failures (401), not transient errors.
	if _, err := c.GetMe(context.Background()); err != nil {
		if client.IsStatus(err, 401) {
			printWelcome()
			return nil
		}
		// Network/server error — launch TUI anyway, it retries internally.
	}

	app := tui.NewApp(c, push.New(wsURL, token))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogout() error {
	tokPath, err := tokenFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(tokPath); os.IsNotExist(err) {
		fmt.Println("Already logged out.")
		return nil
	}
	if err := os.Remove(tokPath); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

func printWelcome() {
	fmt.Println(`gamematch — party finder in your terminal

No session token found. Grab one from your account page:

  https://gamematch.gg/settings/cli

then either

  export GAMEMATCH_TOKEN=<token>

or save it to ~/.gamematch/token and run gamematch again.`)
}

func printHelp() {
	fmt.Println(`gamematch — party finder in your terminal

Usage:
  gamematch            launch the TUI
  gamematch logout     forget the saved session token
  gamematch version    print the version

Environment:
  GAMEMATCH_API_URL    API base URL (default https://api.gamematch.gg)
  GAMEMATCH_WS_URL     websocket URL (default derived from the API URL)
  GAMEMATCH_TOKEN      session token (overrides ~/.gamematch/token)

Keys inside the TUI:
  1 / 2                switch between Rooms and My Room
  j / k                move the cursor
  g / G                cycle the game filter
  enter / J            join the selected room
  x                    leave (owner: disband) the selected room
  n                    open a new room
  c / o                copy or open the room link
  q                    quit`)
}
