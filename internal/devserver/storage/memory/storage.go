// Package memory is the in-memory storage backend for the dev server.
package memory

import (
	"context"
	"sync"

	"github.com/scene-hunter/scenehunter/internal/devserver/storage"
	"github.com/scene-hunter/scenehunter/internal/model"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms  map[model.RoomID]*model.Room
	photos map[photoKey][][]byte
}

type photoKey struct {
	roomID   model.RoomID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:  make(map[model.RoomID]*model.Room),
		photos: make(map[photoKey][][]byte),
	}
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = copyRoom(room)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) AppendPhoto(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := photoKey{roomID: roomID, playerID: playerID}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.photos[key] = append(s.photos[key], buf)
	return nil
}

func (s *Storage) GetPhotos(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	photos := s.photos[photoKey{roomID: roomID, playerID: playerID}]
	out := make([][]byte, len(photos))
	copy(out, photos)
	return out, nil
}

func (s *Storage) DeletePhotos(ctx context.Context, roomID model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.photos {
		if key.roomID == roomID {
			delete(s.photos, key)
		}
	}
	return nil
}

// copyRoom deep-copies a room so callers cannot mutate stored state
func copyRoom(room *model.Room) *model.Room {
	roomCopy := *room
	roomCopy.Users = make(map[model.PlayerID]model.Player, len(room.Users))
	for id, p := range room.Users {
		if p.Score != nil {
			score := *p.Score
			p.Score = &score
		}
		roomCopy.Users[id] = p
	}
	return &roomCopy
}
