package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrInvalidName     = errors.New("invalid player name")
	ErrInvalidRoomCode = errors.New("invalid room code")

	// API errors, mapped from HTTP status codes at the client boundary
	ErrUnauthorized   = errors.New("token is invalid or expired")
	ErrRoomNotFound   = errors.New("room not found")
	ErrAlreadyJoined  = errors.New("already a member of this room")
	ErrNotGameMaster  = errors.New("only the game master can do this")
	ErrPlayerNotFound = errors.New("player not found")

	// Event stream errors
	ErrUnknownEvent = errors.New("unknown event type")

	// Session errors
	ErrNoSession = errors.New("no session established")
)
