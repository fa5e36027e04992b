package workers

import (
	"chat-rooms/domain/event"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func msg(content string) event.UserMessage {
	return event.UserMessage{Room: "general", UserID: "alice", Content: content}
}

func TestRoomForwarder_Relays_Until_Subscription_Closed(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	in := make(chan event.Event, 3)
	out := make(chan event.Event, 3)

	in <- msg("one")
	in <- msg("two")
	close(in)

	// When the subscription is drained then closed
	err := NewRoomForwarder("general", in, out, log).Run(context.Background())

	// Then every event was relayed in order and the worker finished cleanly
	req.NoError(err)
	req.Equal(msg("one"), <-out)
	req.Equal(msg("two"), <-out)
	req.Empty(out)
}

func TestRoomForwarder_Stops_When_Canceled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	in := make(chan event.Event, 3)
	// Unbuffered and never read: the worker blocks on its send
	out := make(chan event.Event)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRoomForwarder("general", in, out, log).Run(ctx)
	}()
	in <- msg("stuck")

	// When the worker is canceled while blocked
	cancel()

	// Then it returns without delivering
	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.Fail("forwarder did not stop")
	}
	req.Empty(out)
}

func TestRoomForwarder_Does_Not_Send_After_Cancel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	in := make(chan event.Event, 1)
	out := make(chan event.Event, 1)
	in <- msg("late")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRoomForwarder("general", in, out, log).Run(ctx)

	req.ErrorIs(err, context.Canceled)
	req.Empty(out)
}
