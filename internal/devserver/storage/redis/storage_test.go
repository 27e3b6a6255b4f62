package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/scene-hunter/scenehunter/internal/model"
)

type RedisStorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestRedisStorageSuite(t *testing.T) {
	suite.Run(t, new(RedisStorageSuite))
}

func (s *RedisStorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := goredis.NewClient(&goredis.Options{Addr: s.mini.Addr()})
	s.storage = NewWithClient(client, DefaultConfig())
}

func (s *RedisStorageSuite) TearDownTest() {
	s.Require().NoError(s.storage.Close())
}

func (s *RedisStorageSuite) testRoom() *model.Room {
	return &model.Room{
		ID:           "123456",
		Status:       model.RoomStatusLobby,
		CurrentRound: 1,
		GameMasterID: "gm",
		Users: map[model.PlayerID]model.Player{
			"gm": {ID: "gm", Name: "Master"},
			"p1": {ID: "p1", Name: "Ann"},
		},
	}
}

func (s *RedisStorageSuite) TestRoomRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.storage.SaveRoom(ctx, s.testRoom()))

	room, err := s.storage.GetRoom(ctx, "123456")
	s.Require().NoError(err)
	s.Equal(model.RoomID("123456"), room.ID)
	s.Equal(model.PlayerID("gm"), room.GameMasterID)
	s.Len(room.Users, 2)

	exists, err := s.storage.RoomExists(ctx, "123456")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *RedisStorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(context.Background(), "999999")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RedisStorageSuite) TestDeleteRoom() {
	ctx := context.Background()
	s.Require().NoError(s.storage.SaveRoom(ctx, s.testRoom()))
	s.Require().NoError(s.storage.DeleteRoom(ctx, "123456"))

	exists, err := s.storage.RoomExists(ctx, "123456")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RedisStorageSuite) TestRoomExpires() {
	ctx := context.Background()
	s.Require().NoError(s.storage.SaveRoom(ctx, s.testRoom()))

	s.mini.FastForward(DefaultConfig().RoomTTL + 1)

	_, err := s.storage.GetRoom(ctx, "123456")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RedisStorageSuite) TestPhotosAppendAndClear() {
	ctx := context.Background()

	s.Require().NoError(s.storage.AppendPhoto(ctx, "123456", "p1", []byte("one")))
	s.Require().NoError(s.storage.AppendPhoto(ctx, "123456", "p1", []byte("two")))
	s.Require().NoError(s.storage.AppendPhoto(ctx, "123456", "p2", []byte("other")))

	photos, err := s.storage.GetPhotos(ctx, "123456", "p1")
	s.Require().NoError(err)
	s.Require().Len(photos, 2)
	s.Equal("one", string(photos[0]))
	s.Equal("two", string(photos[1]))

	s.Require().NoError(s.storage.DeletePhotos(ctx, "123456"))

	photos, err = s.storage.GetPhotos(ctx, "123456", "p1")
	s.Require().NoError(err)
	s.Empty(photos)
	photos, err = s.storage.GetPhotos(ctx, "123456", "p2")
	s.Require().NoError(err)
	s.Empty(photos)
}
