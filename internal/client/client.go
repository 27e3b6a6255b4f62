// Package client implements the HTTP and SSE consumer for the Scene
// Hunter backend API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// Client is an HTTP client for the Scene Hunter API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new API client. The token may be empty until a session
// is established.
func New(baseURL, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "api-client")),
	}
}

// SetToken updates the client's bearer token
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError represents an error response body from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// StatusError carries the HTTP status and decoded error body of a
// failed request. It matches the model sentinels via errors.Is.
type StatusError struct {
	Status int
	API    APIError
}

func (e *StatusError) Error() string {
	if e.API.Message != "" {
		return fmt.Sprintf("%s (%s)", e.API.Message, e.API.Code)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Is maps HTTP statuses onto the model sentinel errors so callers can
// branch with errors.Is instead of inspecting status codes.
func (e *StatusError) Is(target error) bool {
	switch target {
	case model.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case model.ErrAlreadyJoined:
		return e.Status == http.StatusConflict
	case model.ErrPlayerNotFound:
		return e.Status == http.StatusNotFound && e.API.Code == "PLAYER_NOT_FOUND"
	case model.ErrRoomNotFound:
		return e.Status == http.StatusNotFound && e.API.Code != "PLAYER_NOT_FOUND"
	case model.ErrNotGameMaster:
		return e.Status == http.StatusForbidden
	}
	return false
}

// do performs a JSON request with the given bearer token
func (c *Client) do(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, result)
}

// Do performs a JSON request with the client's current token
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	return c.do(ctx, method, path, c.token, body, result)
}

func decodeResponse(resp *http.Response, result any) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		se := &StatusError{Status: resp.StatusCode}
		var errResp ErrorResponse
		if jsonErr := json.Unmarshal(respBody, &errResp); jsonErr == nil {
			se.API = errResp.Error
		}
		return se
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// IssueToken requests a fresh bearer token
func (c *Client) IssueToken(ctx context.Context) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodGet, "/token", "", nil, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// ResolveUser exchanges a token for the player id it authenticates
func (c *Client) ResolveUser(ctx context.Context, token string) (model.PlayerID, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/user", token, nil, &resp); err != nil {
		return "", err
	}
	return model.PlayerID(resp.UserID), nil
}

// CreateRoom creates a room with the caller as game master
func (c *Client) CreateRoom(ctx context.Context, name, lang string) (model.RoomID, error) {
	req := createRoomRequest{Name: name, Language: lang}
	var resp createRoomResponse
	if err := c.Do(ctx, http.MethodPost, "/room/create", req, &resp); err != nil {
		return "", err
	}
	return model.RoomID(resp.RoomID), nil
}

// JoinRoom joins an existing room
func (c *Client) JoinRoom(ctx context.Context, roomID model.RoomID, name, lang string) error {
	req := joinRoomRequest{RoomID: string(roomID), Name: name, Language: lang}
	return c.Do(ctx, http.MethodPost, "/room/join", req, nil)
}

// RoomSnapshot fetches the full membership and status of a room
func (c *Client) RoomSnapshot(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	var resp roomResponse
	if err := c.Do(ctx, http.MethodGet, "/room/users?"+roomQuery(roomID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Room, nil
}

// RenameUser changes the caller's display name in a room
func (c *Client) RenameUser(ctx context.Context, roomID model.RoomID, name string) error {
	req := renameRequest{RoomID: string(roomID), Name: name}
	return c.Do(ctx, http.MethodPut, "/room/username", req, nil)
}

// ExitRoom removes the caller from a room
func (c *Client) ExitRoom(ctx context.Context, roomID model.RoomID) error {
	return c.Do(ctx, http.MethodDelete, "/room/exit?"+roomQuery(roomID), nil, nil)
}

// StartGame advances the room into its first capture phase. Game
// master only.
func (c *Client) StartGame(ctx context.Context, roomID model.RoomID) error {
	req := startGameRequest{RoomID: string(roomID)}
	return c.Do(ctx, http.MethodPut, "/game/start", req, nil)
}

// Description fetches the textual scene clue for the current round
func (c *Client) Description(ctx context.Context, roomID model.RoomID) (string, error) {
	var resp descriptionResponse
	if err := c.Do(ctx, http.MethodGet, "/game/description?"+roomQuery(roomID), nil, &resp); err != nil {
		return "", err
	}
	return resp.Description, nil
}

// Scores fetches every player's similarity score for the room
func (c *Client) Scores(ctx context.Context, roomID model.RoomID) ([]model.Player, error) {
	var resp scoreResponse
	if err := c.Do(ctx, http.MethodGet, "/game/score?"+roomQuery(roomID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// UploadPhoto submits a captured photo as multipart form data
func (c *Client) UploadPhoto(ctx context.Context, roomID model.RoomID, image []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("image", "photo.jpg")
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}

	url := c.baseURL + "/game/upload?" + roomQuery(roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, nil)
}

func roomQuery(roomID model.RoomID) string {
	return url.Values{"room_id": {string(roomID)}}.Encode()
}

