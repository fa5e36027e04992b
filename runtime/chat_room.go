package runtime

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"slices"
)

const MaxHistory = 10

// ChatRoom handles the participants of a room, broadcasts its events
// and keeps a capped history of the last messages.
// ChatRoom is not safe for concurrent use, RoomManager serializes access to it.
type ChatRoom struct {
	metadata     domain.ChatRoomMetadata
	broadcaster  *Broadcaster
	userRegistry *UserRegistry
	history      []event.UserMessage
}

type RoomStats struct {
	Name        string
	Users       int
	Sessions    int
	Subscribers int
	History     int
	Dropped     uint64
}

// NewChatRoom creates a room with no participant and an empty history.
func NewChatRoom(metadata domain.ChatRoomMetadata) *ChatRoom {
	return &ChatRoom{
		metadata:     metadata,
		broadcaster:  NewBroadcaster(BroadcastChannelCapacity),
		userRegistry: NewUserRegistry(),
		history:      make([]event.UserMessage, 0, MaxHistory),
	}
}

func (r *ChatRoom) Metadata() domain.ChatRoomMetadata {
	return r.metadata
}

// Join subscribes the session to the room and returns its live stream with the handle
// bound to it. Every session gets its own stream, a Joined event is only broadcast
// for the first session of a user.
func (r *ChatRoom) Join(id domain.SessionAndUserID) (*Subscription, *UserSessionHandle) {
	subscription := r.broadcaster.Subscribe()
	handle := newUserSessionHandle(r.metadata.Name, subscription, id)

	if r.userRegistry.Insert(handle) {
		r.broadcaster.Publish(event.RoomParticipation{
			UserID: id.UserID,
			Room:   r.metadata.Name,
			Status: event.Joined,
		})
	}
	return subscription, handle
}

// Leave removes the session from the room and releases its stream.
// A Left event is only broadcast when the user's last session is gone.
// Leaving with a handle that is no longer registered does nothing.
func (r *ChatRoom) Leave(handle *UserSessionHandle) {
	last := r.userRegistry.Remove(handle)
	handle.release()

	if last {
		r.broadcaster.Publish(event.RoomParticipation{
			UserID: handle.UserID(),
			Room:   r.metadata.Name,
			Status: event.Left,
		})
	}
}

// SendMessage records the message in the history, evicting the oldest one when full,
// and broadcasts it to every subscriber.
func (r *ChatRoom) SendMessage(id domain.SessionAndUserID, content string) event.UserMessage {
	msg := event.UserMessage{
		Room:    r.metadata.Name,
		UserID:  id.UserID,
		Content: content,
	}
	if len(r.history) == MaxHistory {
		r.history = slices.Delete(r.history, 0, 1)
	}
	r.history = append(r.history, msg)
	r.broadcaster.Publish(msg)
	return msg
}

// History returns a copy of the retained messages, oldest first.
func (r *ChatRoom) History() []event.UserMessage {
	return slices.Clone(r.history)
}

func (r *ChatRoom) UniqueUserIDs() []string {
	return r.userRegistry.UniqueUserIDs()
}

func (r *ChatRoom) Stats() RoomStats {
	return RoomStats{
		Name:        r.metadata.Name,
		Users:       r.userRegistry.UserCount(),
		Sessions:    r.userRegistry.SessionCount(),
		Subscribers: r.broadcaster.SubscriberCount(),
		History:     len(r.history),
		Dropped:     r.broadcaster.Dropped(),
	}
}
