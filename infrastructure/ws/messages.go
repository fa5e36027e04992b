package ws

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"fmt"
)

// Inbound frame types
const (
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypeSendMessage = "send_message"
	TypeGetHistory  = "get_history"
)

// TypeError reports a failed command to the client, the connection stays open.
const TypeError = "error"

// CommandFrame is what a client sends.
type CommandFrame struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Content string `json:"content,omitempty"`
}

// EventFrame is what a client receives.
type EventFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ErrorPayload struct {
	Command string `json:"command"`
	Room    string `json:"room,omitempty"`
	Message string `json:"message"`
}

func ToCommand(f CommandFrame) (domain.UserCommand, error) {
	switch f.Type {
	case TypeJoinRoom:
		return domain.JoinRoomCommand{Room: f.Room}, nil
	case TypeLeaveRoom:
		return domain.LeaveRoomCommand{Room: f.Room}, nil
	case TypeSendMessage:
		return domain.SendMessageCommand{Room: f.Room, Content: f.Content}, nil
	case TypeGetHistory:
		return domain.GetHistoryCommand{Room: f.Room}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownCommand, f.Type)
	}
}

func ToEventFrame(evt event.Event) EventFrame {
	return EventFrame{Type: string(evt.Type()), Payload: evt}
}

func ToErrorFrame(f CommandFrame, err error) EventFrame {
	return EventFrame{
		Type: TypeError,
		Payload: ErrorPayload{
			Command: f.Type,
			Room:    f.Room,
			Message: err.Error(),
		},
	}
}
