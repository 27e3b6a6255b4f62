// Package room implements the development server's room and game
// lifecycle, broadcasting notifications as state changes.
package room

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/scene-hunter/scenehunter/internal/devserver/storage"
	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/validate"
)

// Broadcaster pushes notifications to a room's event stream clients.
// Satisfied by sse.HubManager.
type Broadcaster interface {
	Broadcast(roomID model.RoomID, ev model.GameEvent)
	RemoveHub(roomID model.RoomID)
}

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6

	// PlayerShots is how many photos each non-game-master player
	// submits per round
	PlayerShots = 2
)

// Config holds room service settings
type Config struct {
	// TotalRounds is the number of rounds played before the result
	// screen
	TotalRounds int
}

// DefaultConfig returns default room configuration
func DefaultConfig() Config {
	return Config{TotalRounds: 2}
}

// Service manages rooms and game progression
type Service struct {
	storage storage.Storage
	hubs    Broadcaster
	logger  *slog.Logger
	cfg     Config
}

// New creates a new room service
func New(storage storage.Storage, hubs Broadcaster, logger *slog.Logger, cfg Config) *Service {
	if cfg.TotalRounds == 0 {
		cfg.TotalRounds = DefaultConfig().TotalRounds
	}
	return &Service{
		storage: storage,
		hubs:    hubs,
		logger:  logger.With(slog.String("component", "room-service")),
		cfg:     cfg,
	}
}

// CreateRoom creates a room with the creator as game master
func (s *Service) CreateRoom(ctx context.Context, creatorID model.PlayerID, name, lang string) (*model.Room, error) {
	if err := validate.Name(name); err != nil {
		return nil, err
	}

	id, err := s.generateRoomID(ctx)
	if err != nil {
		return nil, err
	}

	room := &model.Room{
		ID:           id,
		Status:       model.RoomStatusLobby,
		CurrentRound: 1,
		TotalRounds:  s.cfg.TotalRounds,
		GameMasterID: creatorID,
		Users: map[model.PlayerID]model.Player{
			creatorID: {ID: creatorID, Name: name, Language: lang},
		},
	}

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.String("game_master_id", string(creatorID)))
	return room, nil
}

// GetRoom returns a room snapshot
func (s *Service) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return s.storage.GetRoom(ctx, id)
}

// JoinRoom adds a player to a room. Joining twice, or joining with a
// name another member already uses, fails with ErrAlreadyJoined.
func (s *Service) JoinRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, name, lang string) (*model.Room, error) {
	if err := validate.Name(name); err != nil {
		return nil, err
	}

	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if _, ok := room.Users[playerID]; ok {
		return nil, model.ErrAlreadyJoined
	}
	for _, p := range room.Users {
		if p.Name == name {
			return nil, fmt.Errorf("%w: name %q is taken", model.ErrAlreadyJoined, name)
		}
	}

	room.Users[playerID] = model.Player{ID: playerID, Name: name, Language: lang}
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	s.hubs.Broadcast(roomID, model.GameEvent{Kind: model.EventNumberOfUsers})
	return room, nil
}

// RenameUser changes a member's display name
func (s *Service) RenameUser(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, name string) error {
	if err := validate.Name(name); err != nil {
		return err
	}

	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	player, ok := room.Users[playerID]
	if !ok {
		return model.ErrPlayerNotFound
	}
	for id, p := range room.Users {
		if id != playerID && p.Name == name {
			return fmt.Errorf("%w: name %q is taken", model.ErrAlreadyJoined, name)
		}
	}

	player.Name = name
	room.Users[playerID] = player
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return err
	}

	s.hubs.Broadcast(roomID, model.GameEvent{
		Kind:   model.EventUserName,
		UserID: playerID,
		Name:   name,
	})
	return nil
}

// ExitRoom removes a player. The last player leaving tears the room
// down; a departing game master hands the role to another member.
func (s *Service) ExitRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}

	if _, ok := room.Users[playerID]; !ok {
		return model.ErrPlayerNotFound
	}
	delete(room.Users, playerID)

	if len(room.Users) == 0 {
		if err := s.storage.DeleteRoom(ctx, roomID); err != nil {
			return err
		}
		if err := s.storage.DeletePhotos(ctx, roomID); err != nil {
			s.logger.Warn("failed to delete room photos",
				slog.String("room_id", string(roomID)),
				slog.Any("error", err))
		}
		s.hubs.RemoveHub(roomID)
		s.logger.Info("room deleted", slog.String("room_id", string(roomID)))
		return nil
	}

	if room.GameMasterID == playerID {
		room.GameMasterID = successorGameMaster(room)
		defer s.hubs.Broadcast(roomID, model.GameEvent{Kind: model.EventGameMaster})
	}

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return err
	}

	s.hubs.Broadcast(roomID, model.GameEvent{Kind: model.EventNumberOfUsers})
	return nil
}

// StartGame begins a game. Only the game master may start, and only
// from the lobby or result screens.
func (s *Service) StartGame(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsGameMaster(playerID) {
		return model.ErrNotGameMaster
	}
	if room.Status != model.RoomStatusLobby && room.Status != model.RoomStatusResult {
		return fmt.Errorf("game already running in room %s", roomID)
	}

	room.Status = model.RoomStatusInProgress
	room.CurrentRound = 1
	for id, p := range room.Users {
		p.Score = nil
		room.Users[id] = p
	}
	if err := s.storage.DeletePhotos(ctx, roomID); err != nil {
		return err
	}
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return err
	}

	s.hubs.Broadcast(roomID, model.GameEvent{
		Kind:   model.EventGameStatus,
		Phase:  model.PhaseGameMasterPhoto,
		Status: room.Status,
		Round:  room.CurrentRound,
	})
	s.logger.Info("game started", slog.String("room_id", string(roomID)))
	return nil
}

// UploadPhoto stores a photo and advances the round state machine.
// The game master's photo opens the player capture window; once every
// player has submitted their shots the round is scored and the game
// either moves to the next round or to the result screen.
func (s *Service) UploadPhoto(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, data []byte) error {
	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if _, ok := room.Users[playerID]; !ok {
		return model.ErrPlayerNotFound
	}

	if err := s.storage.AppendPhoto(ctx, roomID, playerID, data); err != nil {
		return err
	}

	if room.IsGameMaster(playerID) {
		room.Status = model.RoomStatusAwaitingPhoto
		if err := s.storage.SaveRoom(ctx, room); err != nil {
			return err
		}
		s.hubs.Broadcast(roomID, model.GameEvent{
			Kind:   model.EventGameStatus,
			Phase:  model.PhasePlayerPhoto,
			Status: room.Status,
			Round:  room.CurrentRound,
		})
		return nil
	}

	photos, err := s.storage.GetPhotos(ctx, roomID, playerID)
	if err != nil {
		return err
	}
	if len(photos) >= PlayerShots {
		s.hubs.Broadcast(roomID, model.GameEvent{
			Kind:   model.EventPhotoUploaded,
			UserID: playerID,
		})
	}

	done, err := s.allPlayersDone(ctx, room)
	if err != nil {
		return err
	}
	if !done {
		return nil
	}
	return s.finishRound(ctx, room)
}

// Description returns the scene clue for the current round, derived
// from the game master's photo.
func (s *Service) Description(ctx context.Context, roomID model.RoomID, lang string) (string, error) {
	room, err := s.storage.GetRoom(ctx, roomID)
	if err != nil {
		return "", err
	}

	photos, err := s.storage.GetPhotos(ctx, roomID, room.GameMasterID)
	if err != nil {
		return "", err
	}
	if len(photos) == 0 {
		return "", fmt.Errorf("no scene photo in room %s yet", roomID)
	}
	return describeScene(photos[len(photos)-1], lang), nil
}

// allPlayersDone reports whether the game master and every player have
// submitted all photos for the round
func (s *Service) allPlayersDone(ctx context.Context, room *model.Room) (bool, error) {
	gmPhotos, err := s.storage.GetPhotos(ctx, room.ID, room.GameMasterID)
	if err != nil {
		return false, err
	}
	if len(gmPhotos) == 0 {
		return false, nil
	}

	for _, p := range room.Participants() {
		photos, err := s.storage.GetPhotos(ctx, room.ID, p.ID)
		if err != nil {
			return false, err
		}
		if len(photos) < PlayerShots {
			return false, nil
		}
	}
	return true, nil
}

// finishRound scores the round, then starts the next round or ends the
// game
func (s *Service) finishRound(ctx context.Context, room *model.Room) error {
	gmPhotos, err := s.storage.GetPhotos(ctx, room.ID, room.GameMasterID)
	if err != nil {
		return err
	}
	scene := gmPhotos[len(gmPhotos)-1]

	for _, p := range room.Participants() {
		photos, err := s.storage.GetPhotos(ctx, room.ID, p.ID)
		if err != nil {
			return err
		}
		best := bestSimilarity(scene, photos)
		// A player's score only ever improves across rounds
		if p.Score == nil || best > p.Score.Similarity {
			p.Score = &model.Score{Similarity: best}
			room.Users[p.ID] = p
		}
	}

	if room.CurrentRound < room.TotalRounds {
		room.CurrentRound++
		room.Status = model.RoomStatusInProgress
		if err := s.storage.DeletePhotos(ctx, room.ID); err != nil {
			return err
		}
		if err := s.storage.SaveRoom(ctx, room); err != nil {
			return err
		}
		s.hubs.Broadcast(room.ID, model.GameEvent{
			Kind:   model.EventGameRounds,
			Phase:  model.PhaseGameMasterPhoto,
			Status: room.Status,
			Round:  room.CurrentRound,
		})
		return nil
	}

	room.Status = model.RoomStatusResult
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return err
	}
	s.hubs.Broadcast(room.ID, model.GameEvent{
		Kind:   model.EventGameStatus,
		Phase:  model.PhaseResult,
		Status: room.Status,
		Round:  room.CurrentRound,
	})
	s.logger.Info("game finished", slog.String("room_id", string(room.ID)))
	return nil
}

// successorGameMaster picks the replacement when the game master
// leaves. Lowest player id wins so the choice is deterministic.
func successorGameMaster(room *model.Room) model.PlayerID {
	var next model.PlayerID
	for id := range room.Users {
		if next == "" || id < next {
			next = id
		}
	}
	return next
}

// generateRoomID generates an unused numeric room code
func (s *Service) generateRoomID(ctx context.Context) (model.RoomID, error) {
	for {
		b := make([]byte, RoomCodeLength)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		code := make([]byte, RoomCodeLength)
		for i := range b {
			code[i] = '0' + b[i]%10
		}

		id := model.RoomID(code)
		exists, err := s.storage.RoomExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
}
