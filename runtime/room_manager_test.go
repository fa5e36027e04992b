package runtime

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"chat-rooms/moderation"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var catalogue = []domain.ChatRoomMetadata{
	{Name: "general", Description: "Anything goes"},
	{Name: "random", Description: "Off topic"},
}

func newManager(t *testing.T) *RoomManager {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	m, err := NewRoomManagerFromMetadata(log, nil, catalogue)
	require.NoError(t, err)
	return m
}

func TestRoomManager_Metadata_Keeps_Order(t *testing.T) {
	req := require.New(t)
	m := newManager(t)

	req.Equal(catalogue, m.ChatRoomMetadata())

	// The returned slice is a copy
	m.ChatRoomMetadata()[0].Name = "changed"
	req.Equal("general", m.ChatRoomMetadata()[0].Name)
}

func TestRoomManager_Duplicate_Room(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	_, err := NewRoomManager(log, nil, general(), general())
	require.ErrorIs(t, err, errors.ErrDuplicateRoom)
}

func TestRoomManager_Room_Not_Found(t *testing.T) {
	req := require.New(t)
	m := newManager(t)
	ctx := context.Background()
	id := session("s1", "alice")

	_, err := m.JoinRoom(ctx, "unknown", id)
	req.ErrorIs(err, errors.ErrRoomNotFound)

	err = m.SendMessage(ctx, "unknown", id, "hello")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	_, err = m.GetHistory(ctx, "unknown")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	orphan := newUserSessionHandle("unknown", nil, id)
	req.ErrorIs(m.DropUserSessionHandle(ctx, orphan), errors.ErrRoomNotFound)
}

func TestRoomManager_JoinRoom_Returns_Roster(t *testing.T) {
	req := require.New(t)
	m := newManager(t)
	ctx := context.Background()

	// Given alice in the room
	first, err := m.JoinRoom(ctx, "general", session("s1", "alice"))
	req.NoError(err)
	req.Equal([]string{"alice"}, first.UserIDs)

	// When bob joins
	second, err := m.JoinRoom(ctx, "general", session("s2", "bob"))
	req.NoError(err)

	// Then his roster includes himself
	req.Equal([]string{"alice", "bob"}, second.UserIDs)
	req.Equal("general", second.Handle.Room())

	// And alice sees him joining
	req.Equal(joined("alice"), <-first.Events)
	req.Equal(joined("bob"), <-first.Events)

	// When bob leaves
	req.NoError(m.DropUserSessionHandle(ctx, second.Handle))

	// Then alice is notified and bob's stream is over
	req.Equal(left("bob"), <-first.Events)
	for range second.Events {
	}
}

func TestRoomManager_SendMessage_And_History(t *testing.T) {
	req := require.New(t)
	m := newManager(t)
	ctx := context.Background()

	req.NoError(m.SendMessage(ctx, "general", session("s1", "alice"), "hi"))

	history, err := m.GetHistory(ctx, "general")
	req.NoError(err)
	req.Equal([]event.UserMessage{{Room: "general", UserID: "alice", Content: "hi"}}, history)

	// Rooms don't share history
	history, err = m.GetHistory(ctx, "random")
	req.NoError(err)
	req.Empty(history)
}

func TestRoomManager_Concurrent_Sends_Are_Serialized(t *testing.T) {
	req := require.New(t)
	m := newManager(t)
	ctx := context.Background()
	res, err := m.JoinRoom(ctx, "general", session("s0", "watcher"))
	req.NoError(err)
	<-res.Events

	// When many sessions send at the same time
	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := session(fmt.Sprintf("s%d", i), fmt.Sprintf("user-%d", i))
			errs <- m.SendMessage(ctx, "general", id, fmt.Sprintf("message %d", i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	// Then the history holds the last messages exactly as broadcast
	history, err := m.GetHistory(ctx, "general")
	req.NoError(err)
	req.Len(history, MaxHistory)

	var received []event.Event
	for len(res.Events) > 0 {
		received = append(received, <-res.Events)
	}
	req.Len(received, 50)
	for i, msg := range history {
		req.Equal(received[50-MaxHistory+i], msg)
	}
}

func TestRoomManager_Lock_Honours_Context(t *testing.T) {
	req := require.New(t)
	m := newManager(t)

	// Given the room lock is held
	guarded := m.chatRooms["general"]
	req.NoError(guarded.sem.Acquire(context.Background(), 1))
	defer guarded.sem.Release(1)

	// When an operation cannot get it in time
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.SendMessage(ctx, "general", session("s1", "alice"), "hi")

	// Then it gives up with the context error
	req.ErrorIs(err, context.DeadlineExceeded)

	// And other rooms are not affected
	req.NoError(m.SendMessage(context.Background(), "random", session("s1", "alice"), "hi"))
}

func TestRoomManager_SendMessage_Censored(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	moderator, err := moderation.NewModerator([]string{"spam"}, '*', log)
	req.NoError(err)
	m, err := NewRoomManagerFromMetadata(log, moderator, catalogue)
	req.NoError(err)
	ctx := context.Background()

	req.NoError(m.SendMessage(ctx, "general", session("s1", "alice"), "no spam here"))

	history, err := m.GetHistory(ctx, "general")
	req.NoError(err)
	req.Equal("no **** here", history[0].Content)
}

func TestRoomManager_Stats(t *testing.T) {
	req := require.New(t)
	m := newManager(t)
	ctx := context.Background()

	_, err := m.JoinRoom(ctx, "general", session("s1", "alice"))
	req.NoError(err)
	_, err = m.JoinRoom(ctx, "general", session("s2", "alice"))
	req.NoError(err)
	req.NoError(m.SendMessage(ctx, "general", session("s1", "alice"), "hi"))

	stats, err := m.Stats(ctx)
	req.NoError(err)
	req.Equal([]RoomStats{
		{Name: "general", Users: 1, Sessions: 2, Subscribers: 2, History: 1},
		{Name: "random"},
	}, stats)
}
