// Package redis is the Redis-backed storage backend for the dev
// server.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scene-hunter/scenehunter/internal/devserver/storage"
	"github.com/scene-hunter/scenehunter/internal/model"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

var _ storage.Storage = (*Storage)(nil)

// New creates a new Redis storage instance and verifies the connection
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for
// testing against miniredis)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL).Err()
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	return s.client.Del(ctx, roomKey(id)).Err()
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	n, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) AppendPhoto(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, data []byte) error {
	key := photosKey(roomID, playerID)

	// Track per-room photo keys so DeletePhotos can find them
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.cfg.PhotoTTL)
	pipe.SAdd(ctx, photoIndexKey(roomID), key)
	pipe.Expire(ctx, photoIndexKey(roomID), s.cfg.PhotoTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPhotos(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) ([][]byte, error) {
	values, err := s.client.LRange(ctx, photosKey(roomID, playerID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	photos := make([][]byte, len(values))
	for i, v := range values {
		photos[i] = []byte(v)
	}
	return photos, nil
}

func (s *Storage) DeletePhotos(ctx context.Context, roomID model.RoomID) error {
	keys, err := s.client.SMembers(ctx, photoIndexKey(roomID)).Result()
	if err != nil {
		return err
	}
	keys = append(keys, photoIndexKey(roomID))
	return s.client.Del(ctx, keys...).Err()
}
