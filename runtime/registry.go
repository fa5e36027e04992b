package runtime

import (
	"slices"

	"github.com/samber/lo"
)

type Set map[string]struct{}

// UserRegistry tracks which sessions are present in a single room, grouped by user.
// A user entry exists as long as at least one of its sessions is present,
// which lets the room notify joins and leaves once per user instead of once per session.
// UserRegistry is not safe for concurrent use, the owning room guards it.
type UserRegistry struct {
	sessionsByUser map[string]Set
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{sessionsByUser: make(map[string]Set)}
}

// Insert records the handle's session under its user.
// It returns true only when this is the first session of the user in the room.
func (r *UserRegistry) Insert(handle *UserSessionHandle) bool {
	sessions, ok := r.sessionsByUser[handle.UserID()]
	if !ok {
		r.sessionsByUser[handle.UserID()] = Set{handle.SessionID(): {}}
		return true
	}
	sessions[handle.SessionID()] = struct{}{}
	return false
}

// Remove deletes the handle's session.
// It returns true only when the last session of the user left the room.
// Removing an unknown session is a no-op.
func (r *UserRegistry) Remove(handle *UserSessionHandle) bool {
	sessions, ok := r.sessionsByUser[handle.UserID()]
	if !ok {
		return false
	}
	if _, present := sessions[handle.SessionID()]; !present {
		return false
	}
	delete(sessions, handle.SessionID())

	// No empty sets are kept, the user is gone from the room
	if len(sessions) == 0 {
		delete(r.sessionsByUser, handle.UserID())
		return true
	}
	return false
}

// UniqueUserIDs returns the distinct users present, sorted.
func (r *UserRegistry) UniqueUserIDs() []string {
	ids := lo.Keys(r.sessionsByUser)
	slices.Sort(ids)
	return ids
}

// UserCount returns the number of distinct users present.
func (r *UserRegistry) UserCount() int {
	return len(r.sessionsByUser)
}

// SessionCount returns the number of sessions present, all users included.
func (r *UserRegistry) SessionCount() int {
	return lo.SumBy(lo.Values(r.sessionsByUser), func(s Set) int { return len(s) })
}
