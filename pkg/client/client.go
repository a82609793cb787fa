package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/mappyas/gamematch/pkg/domain"
)

// CreateRecruitmentRequest is the payload for opening a new recruitment.
type CreateRecruitmentRequest struct {
	GameID      string `json:"game_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Rank        string `json:"rank,omitempty"`
	MaxSlots    int    `json:"max_slots"`
	VoiceChat   bool   `json:"voice_chat,omitempty"`
}

// Client is the gamematch API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetMe returns the authenticated player's profile.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/api/me/", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// ListGames fetches the game catalog recruitments are filed under.
func (c *Client) ListGames(ctx context.Context) ([]domain.Game, error) {
	var games []domain.Game
	if err := c.get(ctx, "/api/games/", &games); err != nil {
		return nil, fmt.Errorf("client.ListGames: %w", err)
	}
	return games, nil
}

// ListRecruitments fetches the full authoritative recruitment listing.
// This is the snapshot used to seed (and gap-recover) the live roster.
func (c *Client) ListRecruitments(ctx context.Context) ([]domain.Recruitment, error) {
	var resp struct {
		Recruitments []domain.Recruitment `json:"recruitments"`
	}
	if err := c.get(ctx, "/api/recruitments/", &resp); err != nil {
		return nil, fmt.Errorf("client.ListRecruitments: %w", err)
	}
	return resp.Recruitments, nil
}

// CreateRecruitment opens a new recruitment owned by the caller.
func (c *Client) CreateRecruitment(ctx context.Context, req CreateRecruitmentRequest) (*domain.Recruitment, error) {
	var created domain.Recruitment
	if err := c.post(ctx, "/api/recruitments/create/", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateRecruitment: %w", err)
	}
	return &created, nil
}

// JoinRecruitment adds the user to a recruitment's participant list.
// The server is the real capacity guard; a full room comes back as an
// HTTPError, not a partial success.
func (c *Client) JoinRecruitment(ctx context.Context, id uuid.UUID, user domain.User) (*domain.Recruitment, error) {
	body := map[string]string{
		"user_id":  user.ID.String(),
		"username": user.Username,
	}
	var updated domain.Recruitment
	if err := c.post(ctx, "/api/recruitments/"+url.PathEscape(id.String())+"/join/", body, &updated); err != nil {
		return nil, fmt.Errorf("client.JoinRecruitment: %w", err)
	}
	return &updated, nil
}

// LeaveRecruitment removes the user from a recruitment. When the leaving
// user is the owner the server disbands the room and broadcasts a delete;
// the returned recruitment is nil in that case.
func (c *Client) LeaveRecruitment(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Recruitment, error) {
	body := map[string]string{"user_id": userID.String()}
	var resp struct {
		Recruitment *domain.Recruitment `json:"recruitment"`
		Disbanded   bool                `json:"disbanded"`
	}
	if err := c.post(ctx, "/api/recruitments/"+url.PathEscape(id.String())+"/leave/", body, &resp); err != nil {
		return nil, fmt.Errorf("client.LeaveRecruitment: %w", err)
	}
	return resp.Recruitment, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
