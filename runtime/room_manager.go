// Package runtime holds the in-memory chat rooms and routes session operations to them.
// Each room is guarded on its own, operations on different rooms never wait on each other.
package runtime

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"chat-rooms/moderation"
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/sync/semaphore"
)

// RoomJoinResult is what a session gets back when joining a room:
// its live stream, the handle needed to leave, and the users present at join time.
type RoomJoinResult struct {
	Events  <-chan event.Event
	Handle  *UserSessionHandle
	UserIDs []string
}

// guardedRoom pairs a room with its exclusive access token.
type guardedRoom struct {
	sem  *semaphore.Weighted
	room *ChatRoom
}

type RoomManager struct {
	log              *slog.Logger
	moderator        *moderation.Moderator
	chatRooms        map[string]*guardedRoom
	chatRoomMetadata []domain.ChatRoomMetadata
}

// NewRoomManager builds the fixed set of rooms. The order of rooms is kept for metadata listing.
// The moderator is optional.
func NewRoomManager(log *slog.Logger, moderator *moderation.Moderator, rooms ...*ChatRoom) (*RoomManager, error) {
	chatRooms := make(map[string]*guardedRoom, len(rooms))
	for _, room := range rooms {
		name := room.Metadata().Name
		if _, ok := chatRooms[name]; ok {
			return nil, fmt.Errorf("%w: %q", errors.ErrDuplicateRoom, name)
		}
		chatRooms[name] = &guardedRoom{sem: semaphore.NewWeighted(1), room: room}
	}

	return &RoomManager{
		log:       log,
		moderator: moderator,
		chatRooms: chatRooms,
		chatRoomMetadata: lo.Map(rooms, func(room *ChatRoom, _ int) domain.ChatRoomMetadata {
			return room.Metadata()
		}),
	}, nil
}

func NewRoomManagerFromMetadata(log *slog.Logger, moderator *moderation.Moderator, metadata []domain.ChatRoomMetadata) (*RoomManager, error) {
	return NewRoomManager(log, moderator, lo.Map(metadata, func(m domain.ChatRoomMetadata, _ int) *ChatRoom {
		return NewChatRoom(m)
	})...)
}

// ChatRoomMetadata returns the rooms in declaration order.
func (m *RoomManager) ChatRoomMetadata() []domain.ChatRoomMetadata {
	return append([]domain.ChatRoomMetadata(nil), m.chatRoomMetadata...)
}

// JoinRoom joins the session to the room. The user list is captured
// under the same lock as the join so the roster includes the newcomer.
func (m *RoomManager) JoinRoom(ctx context.Context, roomName string, id domain.SessionAndUserID) (RoomJoinResult, error) {
	var res RoomJoinResult
	err := m.withRoom(ctx, roomName, func(room *ChatRoom) {
		subscription, handle := room.Join(id)
		res = RoomJoinResult{
			Events:  subscription.Events(),
			Handle:  handle,
			UserIDs: room.UniqueUserIDs(),
		}
	})
	if err != nil {
		return RoomJoinResult{}, err
	}
	m.log.Debug("Session joined room", "room", roomName, "user_id", id.UserID, "session_id", id.SessionID)
	return res, nil
}

// DropUserSessionHandle consumes the handle: the session leaves the room and its stream is released.
func (m *RoomManager) DropUserSessionHandle(ctx context.Context, handle *UserSessionHandle) error {
	err := m.withRoom(ctx, handle.Room(), func(room *ChatRoom) {
		room.Leave(handle)
	})
	if err != nil {
		return err
	}
	m.log.Debug("Session left room", "room", handle.Room(), "user_id", handle.UserID(), "session_id", handle.SessionID())
	return nil
}

func (m *RoomManager) SendMessage(ctx context.Context, roomName string, id domain.SessionAndUserID, content string) error {
	// Censoring is CPU bound, done before taking the room lock
	if m.moderator != nil {
		if censored, words := m.moderator.Censor(content); len(words) > 0 {
			m.log.Info("Message censored", "room", roomName, "user_id", id.UserID, "words", len(words))
			content = censored
		}
	}
	return m.withRoom(ctx, roomName, func(room *ChatRoom) {
		room.SendMessage(id, content)
	})
}

func (m *RoomManager) GetHistory(ctx context.Context, roomName string) ([]event.UserMessage, error) {
	var history []event.UserMessage
	err := m.withRoom(ctx, roomName, func(room *ChatRoom) {
		history = room.History()
	})
	return history, err
}

// Stats samples every room, one at a time.
func (m *RoomManager) Stats(ctx context.Context) ([]RoomStats, error) {
	stats := make([]RoomStats, 0, len(m.chatRoomMetadata))
	for _, metadata := range m.chatRoomMetadata {
		err := m.withRoom(ctx, metadata.Name, func(room *ChatRoom) {
			stats = append(stats, room.Stats())
		})
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// withRoom runs fn while holding the room's exclusive access.
func (m *RoomManager) withRoom(ctx context.Context, roomName string, fn func(room *ChatRoom)) error {
	guarded, ok := m.chatRooms[roomName]
	if !ok {
		return fmt.Errorf("%w: %q", errors.ErrRoomNotFound, roomName)
	}
	if err := guarded.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for room %q: %w", roomName, err)
	}
	defer guarded.sem.Release(1)

	fn(guarded.room)
	return nil
}
