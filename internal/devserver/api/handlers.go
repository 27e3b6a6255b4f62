package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/scene-hunter/scenehunter/internal/devserver/auth"
	"github.com/scene-hunter/scenehunter/internal/devserver/room"
	"github.com/scene-hunter/scenehunter/internal/devserver/sse"
	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/validate"
)

// maxUploadBytes bounds a single photo upload
const maxUploadBytes = 10 << 20

type handlers struct {
	auth  *auth.Service
	rooms *room.Service
	hubs  *sse.HubManager
}

// Wire types

type tokenResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	UserID string `json:"user_id"`
}

type createRoomRequest struct {
	Name     string `json:"name"`
	Language string `json:"lang"`
}

type createRoomResponse struct {
	RoomID string `json:"room_id"`
}

type joinRoomRequest struct {
	RoomID   string `json:"room_id"`
	Name     string `json:"name"`
	Language string `json:"lang"`
}

type roomResponse struct {
	Room *model.Room `json:"room"`
}

type renameRequest struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

type startGameRequest struct {
	RoomID string `json:"room_id"`
}

type descriptionResponse struct {
	Description string `json:"description"`
}

type scoreResponse struct {
	Users []model.Player `json:"users"`
}

// GET /token

func (h *handlers) issueToken(w http.ResponseWriter, r *http.Request) {
	session := h.auth.IssueToken()
	writeJSON(w, http.StatusOK, tokenResponse{Token: session.Token})
}

// GET /user

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	playerID := playerFromContext(r.Context())
	writeJSON(w, http.StatusOK, userResponse{UserID: string(playerID)})
}

// POST /room/create

func (h *handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid JSON body"))
		return
	}

	created, err := h.rooms.CreateRoom(r.Context(), playerFromContext(r.Context()), req.Name, req.Language)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createRoomResponse{RoomID: string(created.ID)})
}

// POST /room/join

func (h *handlers) joinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid JSON body"))
		return
	}
	if err := validate.RoomCode(req.RoomID); err != nil {
		WriteError(w, err)
		return
	}

	_, err := h.rooms.JoinRoom(r.Context(), model.RoomID(req.RoomID), playerFromContext(r.Context()), req.Name, req.Language)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeNoContent(w)
}

// GET /room/users

func (h *handlers) roomUsers(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	snapshot, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomResponse{Room: snapshot})
}

// PUT /room/username

func (h *handlers) renameUser(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid JSON body"))
		return
	}
	if err := validate.RoomCode(req.RoomID); err != nil {
		WriteError(w, err)
		return
	}

	err := h.rooms.RenameUser(r.Context(), model.RoomID(req.RoomID), playerFromContext(r.Context()), req.Name)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeNoContent(w)
}

// DELETE /room/exit

func (h *handlers) exitRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.rooms.ExitRoom(r.Context(), roomID, playerFromContext(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	writeNoContent(w)
}

// PUT /game/start

func (h *handlers) startGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid JSON body"))
		return
	}
	if err := validate.RoomCode(req.RoomID); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.rooms.StartGame(r.Context(), model.RoomID(req.RoomID), playerFromContext(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	writeNoContent(w)
}

// POST /game/upload

func (h *handlers) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		WriteError(w, NewInvalidRequestError("missing image file"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, NewInvalidRequestError("unreadable image file"))
		return
	}

	if err := h.rooms.UploadPhoto(r.Context(), roomID, playerFromContext(r.Context()), data); err != nil {
		WriteError(w, err)
		return
	}
	writeNoContent(w)
}

// GET /game/description

func (h *handlers) description(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	lang := r.URL.Query().Get("lang")
	clue, err := h.rooms.Description(r.Context(), roomID, lang)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, descriptionResponse{Description: clue})
}

// GET /game/score

func (h *handlers) scores(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	snapshot, err := h.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	users := make([]model.Player, 0, len(snapshot.Users))
	for _, p := range snapshot.Users {
		users = append(users, p)
	}
	writeJSON(w, http.StatusOK, scoreResponse{Users: users})
}

// GET /notification

func (h *handlers) notifications(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomIDFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	// The room must exist before a stream can be opened for it
	if _, err := h.rooms.GetRoom(r.Context(), roomID); err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubs.GetOrCreateHub(roomID)
	sse.Serve(w, r, hub, playerFromContext(r.Context()))
}

func roomIDFromQuery(r *http.Request) (model.RoomID, error) {
	code := r.URL.Query().Get("room_id")
	if err := validate.RoomCode(code); err != nil {
		return "", err
	}
	return model.RoomID(code), nil
}
