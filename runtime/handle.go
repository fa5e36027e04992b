package runtime

import "chat-rooms/domain"

// UserSessionHandle proves that a session is present in a room.
// It is owned by the session that joined and must be handed back to
// RoomManager.DropUserSessionHandle to leave. It is never copied.
type UserSessionHandle struct {
	room         string
	id           domain.SessionAndUserID
	subscription *Subscription
}

func newUserSessionHandle(room string, subscription *Subscription, id domain.SessionAndUserID) *UserSessionHandle {
	return &UserSessionHandle{room: room, id: id, subscription: subscription}
}

func (h *UserSessionHandle) Room() string      { return h.room }
func (h *UserSessionHandle) UserID() string    { return h.id.UserID }
func (h *UserSessionHandle) SessionID() string { return h.id.SessionID }

// release closes the subscription bound to the handle. Safe to call more than once.
func (h *UserSessionHandle) release() {
	if h.subscription != nil {
		h.subscription.Close()
	}
}
