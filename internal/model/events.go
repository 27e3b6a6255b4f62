package model

import (
	"encoding/json"
	"fmt"
)

// EventKind identifies the type of a room notification
type EventKind string

// Event kinds pushed by the notification stream. The strings are the
// wire-level "message" tags.
const (
	EventGameStatus    EventKind = "update game status"
	EventGameRounds    EventKind = "update game rounds"
	EventPhotoUploaded EventKind = "update photo uploaded users"
	EventUserName      EventKind = "update user name"
	EventGameMaster    EventKind = "change game master"
	EventNumberOfUsers EventKind = "update number of users"
)

// RoundPhase is the "result" field carried by game status/rounds
// events, steering which screen each player should be on.
type RoundPhase string

const (
	PhaseGameMasterPhoto RoundPhase = "game-master-photo"
	PhasePlayerPhoto     RoundPhase = "player-photo"
	PhaseResult          RoundPhase = "result"
	// PhaseNone means the event only updates round/status counters
	PhaseNone RoundPhase = ""
)

// GameEvent is a decoded room notification
type GameEvent struct {
	Kind   EventKind
	Phase  RoundPhase
	Status RoomStatus
	Round  int

	// Set for user name updates
	UserID PlayerID
	Name   string
}

// eventPayload is the raw wire shape of a notification
type eventPayload struct {
	Message      string `json:"message"`
	Result       string `json:"result,omitempty"`
	Status       string `json:"status,omitempty"`
	CurrentRound int    `json:"current_round,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	Name         string `json:"name,omitempty"`
}

// ParseEvent decodes a notification payload into a GameEvent. Unknown
// message tags return ErrUnknownEvent rather than falling through
// silently; callers decide whether to drop or fail.
func ParseEvent(data []byte) (GameEvent, error) {
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return GameEvent{}, fmt.Errorf("malformed event payload: %w", err)
	}

	ev := GameEvent{
		Kind:   EventKind(p.Message),
		Status: RoomStatus(p.Status),
		Round:  p.CurrentRound,
		UserID: PlayerID(p.UserID),
		Name:   p.Name,
	}

	switch ev.Kind {
	case EventGameStatus, EventGameRounds:
		switch RoundPhase(p.Result) {
		case PhaseGameMasterPhoto, PhasePlayerPhoto, PhaseResult, PhaseNone:
			ev.Phase = RoundPhase(p.Result)
		default:
			return GameEvent{}, fmt.Errorf("%w: result %q", ErrUnknownEvent, p.Result)
		}
	case EventPhotoUploaded, EventUserName, EventGameMaster, EventNumberOfUsers:
		// No extra interpretation needed
	default:
		return GameEvent{}, fmt.Errorf("%w: message %q", ErrUnknownEvent, p.Message)
	}

	return ev, nil
}

// Encode marshals the event back to its wire form. Used by the dev
// server to broadcast notifications.
func (ev GameEvent) Encode() []byte {
	p := eventPayload{
		Message:      string(ev.Kind),
		Result:       string(ev.Phase),
		Status:       string(ev.Status),
		CurrentRound: ev.Round,
		UserID:       string(ev.UserID),
		Name:         ev.Name,
	}
	data, _ := json.Marshal(p)
	return data
}
