// Package storage defines persistence for the development server.
package storage

import (
	"context"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// Storage defines the interface for dev server data persistence
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)

	// Photo operations. Photos are appended per player per room and
	// cleared between rounds.
	AppendPhoto(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, data []byte) error
	GetPhotos(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) ([][]byte, error)
	DeletePhotos(ctx context.Context, roomID model.RoomID) error
}
