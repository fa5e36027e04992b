package workers

import (
	"chat-rooms/domain/event"
	"context"
	"log/slog"
)

// RoomForwarder relays the events of one room subscription into a session's merged stream.
// It returns when the subscription is closed or its context is canceled,
// and never sends once it has seen the cancellation.
type RoomForwarder struct {
	room   string
	events <-chan event.Event
	out    chan<- event.Event
	log    *slog.Logger
}

func NewRoomForwarder(room string, events <-chan event.Event, out chan<- event.Event, log *slog.Logger) *RoomForwarder {
	return &RoomForwarder{room: room, events: events, out: out, log: log}
}

func (w *RoomForwarder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Room subscription closed", "room", w.room)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.out <- evt:
			}
		}
	}
}
