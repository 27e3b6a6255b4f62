// Package roomsync owns the client-side room state machine: it
// reconciles snapshot fetches with the server-push notification stream
// and drives the screen transitions between lobby, photo capture,
// waiting and result.
package roomsync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// Screen is the UI state the local player should be on
type Screen string

const (
	ScreenLobby   Screen = "lobby"
	ScreenCapture Screen = "photo-capture"
	ScreenWaiting Screen = "waiting"
	ScreenResult  Screen = "result"
)

// ReconnectDelay is the fixed wait between stream reconnect attempts.
// There is deliberately no backoff and no attempt limit.
const ReconnectDelay = 5 * time.Second

// API is the snapshot surface the synchronizer reconciles against
type API interface {
	RoomSnapshot(ctx context.Context, roomID model.RoomID) (*model.Room, error)
}

// Stream delivers decoded room notifications
type Stream interface {
	Next() (model.GameEvent, error)
	Close() error
}

// StreamOpener opens a notification stream for a room
type StreamOpener interface {
	Subscribe(ctx context.Context, roomID model.RoomID) (Stream, error)
}

// State is an immutable view of the synchronizer's current state
type State struct {
	Screen       Screen
	Status       model.RoomStatus
	Round        int
	Room         *model.Room
	IsGameMaster bool
	PhotoTaken   bool
}

// Synchronizer reconciles room state and runs the screen state machine
type Synchronizer struct {
	api    API
	opener StreamOpener
	clock  clockwork.Clock
	logger *slog.Logger

	roomID   model.RoomID
	playerID model.PlayerID

	mu         sync.Mutex
	screen     Screen
	status     model.RoomStatus
	round      int
	room       *model.Room
	photoTaken bool

	updates chan State
}

// New creates a synchronizer for the given room and local player
func New(api API, opener StreamOpener, clock clockwork.Clock, roomID model.RoomID, playerID model.PlayerID, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		api:      api,
		opener:   opener,
		clock:    clock,
		logger:   logger.With(slog.String("component", "roomsync"), slog.String("room_id", string(roomID))),
		roomID:   roomID,
		playerID: playerID,
		screen:   ScreenLobby,
		round:    1,
		status:   model.RoomStatusLobby,
		updates:  make(chan State, 16),
	}
}

// Updates returns the channel on which state changes are published.
// When the consumer lags, intermediate states are dropped; the latest
// state is always retrievable via State().
func (s *Synchronizer) Updates() <-chan State {
	return s.updates
}

// State returns the current state
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Synchronizer) snapshotLocked() State {
	st := State{
		Screen:     s.screen,
		Status:     s.status,
		Round:      s.round,
		PhotoTaken: s.photoTaken,
	}
	if s.room != nil {
		roomCopy := *s.room
		roomCopy.Users = make(map[model.PlayerID]model.Player, len(s.room.Users))
		for id, p := range s.room.Users {
			roomCopy.Users[id] = p
		}
		st.Room = &roomCopy
		st.IsGameMaster = s.room.IsGameMaster(s.playerID)
	}
	return st
}

func (s *Synchronizer) publishLocked() {
	st := s.snapshotLocked()
	select {
	case s.updates <- st:
	default:
		s.logger.Warn("state update dropped - consumer not keeping up")
	}
}

// MarkPhotoTaken records that the local player completed their capture
// for this round. From then on, status events route the player to the
// waiting screen instead of back into capture, until the next round or
// result event.
func (s *Synchronizer) MarkPhotoTaken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photoTaken = true
	s.screen = ScreenWaiting
	s.publishLocked()
}

// Run performs the initial snapshot fetch, then consumes the
// notification stream, reconnecting after a fixed delay whenever the
// stream fails. It returns when the context is cancelled.
func (s *Synchronizer) Run(ctx context.Context) error {
	s.refresh(ctx)

	for {
		stream, err := s.opener.Subscribe(ctx, s.roomID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("stream connection failed", slog.Any("error", err))
			if err := s.waitReconnect(ctx); err != nil {
				return err
			}
			continue
		}

		s.consume(ctx, stream)
		_ = stream.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.waitReconnect(ctx); err != nil {
			return err
		}
	}
}

func (s *Synchronizer) waitReconnect(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(ReconnectDelay):
		return nil
	}
}

func (s *Synchronizer) consume(ctx context.Context, stream Stream) {
	for {
		ev, err := stream.Next()
		if err != nil {
			if errors.Is(err, model.ErrUnknownEvent) {
				// Unknown tags are dropped explicitly, never
				// re-dispatched as something else
				s.logger.Warn("dropping unknown event", slog.Any("error", err))
				continue
			}
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				s.logger.Warn("stream read failed", slog.Any("error", err))
			}
			return
		}
		s.handle(ctx, ev)
	}
}

// handle applies one notification to the state machine
func (s *Synchronizer) handle(ctx context.Context, ev model.GameEvent) {
	switch ev.Kind {
	case model.EventGameStatus, model.EventGameRounds:
		s.handlePhase(ev)

	case model.EventPhotoUploaded:
		// Informational for everyone except a player mid-capture;
		// the lobby and result screens stay put.
		s.mu.Lock()
		if s.screen == ScreenCapture {
			s.screen = ScreenWaiting
			s.publishLocked()
		}
		s.mu.Unlock()

	case model.EventUserName:
		// Patch locally for immediate display, then reconcile with a
		// full snapshot
		s.mu.Lock()
		if s.room != nil {
			if p, ok := s.room.Users[ev.UserID]; ok {
				p.Name = ev.Name
				s.room.Users[ev.UserID] = p
				s.publishLocked()
			}
		}
		s.mu.Unlock()
		s.refresh(ctx)

	case model.EventGameMaster, model.EventNumberOfUsers:
		// No incremental merge for these; full reconciliation
		s.refresh(ctx)
	}
}

func (s *Synchronizer) handlePhase(ev model.GameEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.Status != "" {
		s.status = ev.Status
	}
	if ev.Round > 0 {
		s.round = ev.Round
	}

	isGameMaster := s.room != nil && s.room.IsGameMaster(s.playerID)

	switch ev.Phase {
	case model.PhaseGameMasterPhoto:
		// A new round begins with the game master's reference shot
		s.photoTaken = false
		if isGameMaster {
			s.screen = ScreenCapture
		} else {
			s.screen = ScreenWaiting
		}

	case model.PhasePlayerPhoto:
		if isGameMaster || s.photoTaken {
			s.screen = ScreenWaiting
		} else {
			s.screen = ScreenCapture
		}

	case model.PhaseResult:
		s.photoTaken = false
		s.screen = ScreenResult

	case model.PhaseNone:
		// Counter-only update
	}

	s.publishLocked()
}

// refresh reconciles local state with a full snapshot. A failed fetch
// is logged and leaves the previous state untouched.
func (s *Synchronizer) refresh(ctx context.Context) {
	room, err := s.api.RoomSnapshot(ctx, s.roomID)
	if err != nil {
		s.logger.Error("snapshot fetch failed", slog.Any("error", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = room
	if room.Status != "" {
		s.status = room.Status
	}
	if room.CurrentRound > 0 {
		s.round = room.CurrentRound
	}
	s.publishLocked()
}
