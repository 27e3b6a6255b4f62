// Package lobby implements the room entry flow: creating a room or
// joining an existing one, with all input validated before it reaches
// the network.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/validate"
)

// API is the subset of the backend the lobby flow needs
type API interface {
	CreateRoom(ctx context.Context, name, lang string) (model.RoomID, error)
	JoinRoom(ctx context.Context, roomID model.RoomID, name, lang string) error
	RenameUser(ctx context.Context, roomID model.RoomID, name string) error
}

// Controller drives room creation and joining
type Controller struct {
	api    API
	logger *slog.Logger
}

// NewController creates a lobby controller
func NewController(api API, logger *slog.Logger) *Controller {
	return &Controller{
		api:    api,
		logger: logger.With(slog.String("component", "lobby")),
	}
}

// CreateRoom validates the player name and creates a room with the
// caller as game master. Returns the new room's id.
func (c *Controller) CreateRoom(ctx context.Context, name, lang string) (model.RoomID, error) {
	if err := validate.Name(name); err != nil {
		return "", err
	}

	roomID, err := c.api.CreateRoom(ctx, name, lang)
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}

	c.logger.Info("room created", slog.String("room_id", string(roomID)))
	return roomID, nil
}

// JoinRoom validates inputs and joins the room. A conflict response
// means the caller is already a member; in that case the name is
// updated instead and the join succeeds. A missing room surfaces as
// model.ErrRoomNotFound.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, name, lang string) error {
	if err := validate.Name(name); err != nil {
		return err
	}
	if err := validate.RoomCode(string(roomID)); err != nil {
		return err
	}

	err := c.api.JoinRoom(ctx, roomID, name, lang)
	switch {
	case err == nil:
		c.logger.Info("joined room", slog.String("room_id", string(roomID)))
		return nil
	case errors.Is(err, model.ErrAlreadyJoined):
		c.logger.Info("already in room, updating name",
			slog.String("room_id", string(roomID)))
		if err := c.api.RenameUser(ctx, roomID, name); err != nil {
			return fmt.Errorf("failed to update name after rejoin: %w", err)
		}
		return nil
	case errors.Is(err, model.ErrRoomNotFound):
		return err
	default:
		return fmt.Errorf("failed to join room: %w", err)
	}
}
