package client

import "github.com/scene-hunter/scenehunter/internal/model"

// Wire types for the backend API

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
	Room model.Room `json:"room"`
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
