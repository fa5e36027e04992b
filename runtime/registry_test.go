package runtime

import (
	"chat-rooms/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func handleFor(userID string) *UserSessionHandle {
	return newUserSessionHandle("general", nil, domain.SessionAndUserID{
		SessionID: uuid.NewString(),
		UserID:    userID,
	})
}

func TestUserRegistry_Insert_First_Session_Only(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry()
	s1 := handleFor("alice")
	s2 := handleFor("alice")

	// When a user is inserted for the first time
	// Then the insertion is reported as a first presence
	req.True(registry.Insert(s1))

	// When a second session of the same user is inserted
	// Then no first presence is reported
	req.False(registry.Insert(s2))

	// And inserting the same session again changes nothing
	req.False(registry.Insert(s1))

	req.Equal([]string{"alice"}, registry.UniqueUserIDs())
	req.Equal(2, registry.SessionCount())
}

func TestUserRegistry_Remove_Last_Session_Only(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry()
	s1 := handleFor("alice")
	s2 := handleFor("alice")

	// Given a user present with two sessions
	registry.Insert(s1)
	registry.Insert(s2)

	// When the first session leaves
	// Then the user is still present
	req.False(registry.Remove(s1))
	req.Equal([]string{"alice"}, registry.UniqueUserIDs())

	// When the last session leaves
	// Then the user is gone
	req.True(registry.Remove(s2))
	req.Empty(registry.UniqueUserIDs())
	req.Empty(registry.sessionsByUser)
}

func TestUserRegistry_Remove_Unknown_Session(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry()
	s1 := handleFor("alice")

	// Given an empty registry
	// Then removing is a no-op
	req.False(registry.Remove(s1))

	// Given alice present with another session
	registry.Insert(handleFor("alice"))

	// Then removing an unknown session of alice keeps her present
	req.False(registry.Remove(s1))
	req.Equal([]string{"alice"}, registry.UniqueUserIDs())
}

func TestUserRegistry_UniqueUserIDs_Sorted_And_Distinct(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry()

	registry.Insert(handleFor("carol"))
	registry.Insert(handleFor("alice"))
	registry.Insert(handleFor("bob"))
	registry.Insert(handleFor("alice"))

	req.Equal([]string{"alice", "bob", "carol"}, registry.UniqueUserIDs())
	req.Equal(3, registry.UserCount())
	req.Equal(4, registry.SessionCount())
}

func TestUserRegistry_Counts_After_Remove(t *testing.T) {
	req := require.New(t)
	registry := NewUserRegistry()
	a1, a2 := handleFor("alice"), handleFor("alice")
	registry.Insert(a1)
	registry.Insert(a2)

	// When one of alice's sessions leaves
	registry.Remove(a1)

	// Then she is still counted once
	req.Equal(1, registry.UserCount())
	req.Equal(1, registry.SessionCount())

	// When her last session leaves
	registry.Remove(a2)

	// Then the registry is empty
	req.Zero(registry.UserCount())
	req.Zero(registry.SessionCount())
}
