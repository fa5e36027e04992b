package services

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"chat-rooms/runtime"
	"chat-rooms/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

const MergeChannelCapacity = 100

var validate = validator.New()

type joinedRoom struct {
	handle *runtime.UserSessionHandle
	stop   contract.StopFunc
}

// ChatSession represents one live connection.
// It turns user commands into room operations and merges the events of every joined room
// into a single stream, read with Recv. One forwarding worker runs per joined room.
//
// HandleCommand, LeaveAllRooms and Close may be called from a different goroutine than Recv.
type ChatSession struct {
	mu          sync.Mutex
	ctx         context.Context
	log         *slog.Logger
	id          domain.SessionAndUserID
	roomManager contract.IRoomManager
	supervisor  contract.ISupervisor
	joinedRooms map[string]joinedRoom
	events      chan event.Event
	closed      bool
}

// NewChatSession creates an idle session. ctx bounds the lifetime of the forwarding workers.
func NewChatSession(ctx context.Context, log *slog.Logger, id domain.SessionAndUserID,
	roomManager contract.IRoomManager, supervisor contract.ISupervisor) *ChatSession {
	return &ChatSession{
		ctx:         ctx,
		log:         log.With("session_id", id.SessionID, "user_id", id.UserID),
		id:          id,
		roomManager: roomManager,
		supervisor:  supervisor,
		joinedRooms: make(map[string]joinedRoom),
		events:      make(chan event.Event, MergeChannelCapacity),
	}
}

func (s *ChatSession) ID() domain.SessionAndUserID {
	return s.id
}

// HandleCommand executes a single user command.
// Failures are tied to the command and leave the session usable.
func (s *ChatSession) HandleCommand(ctx context.Context, cmd domain.UserCommand) error {
	if cmd == nil {
		return errors.ErrUnknownCommand
	}
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.ErrSessionClosed
	}

	switch c := cmd.(type) {
	case domain.JoinRoomCommand:
		return s.joinRoom(ctx, c.Room)
	case domain.SendMessageCommand:
		return s.roomManager.SendMessage(ctx, c.Room, s.id, c.Content)
	case domain.LeaveRoomCommand:
		return s.leaveRoom(ctx, c.Room)
	case domain.GetHistoryCommand:
		return s.replayHistory(ctx, c.Room)
	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownCommand, cmd)
	}
}

func (s *ChatSession) joinRoom(ctx context.Context, room string) error {
	if _, ok := s.joinedRooms[room]; ok {
		return fmt.Errorf("%w: %q", errors.ErrAlreadyJoined, room)
	}

	res, err := s.roomManager.JoinRoom(ctx, room, s.id)
	if err != nil {
		return err
	}

	// The roster goes out before any live event of the room
	reply := event.UserJoinedRoom{Room: room, Users: res.UserIDs}
	if err := s.deliver(ctx, reply); err != nil {
		if dropErr := s.roomManager.DropUserSessionHandle(context.WithoutCancel(ctx), res.Handle); dropErr != nil {
			err = multierr.Append(err, dropErr)
		}
		return err
	}

	forwarder := workers.NewRoomForwarder(room, res.Events, s.events, s.log)
	stop := s.supervisor.Start(s.ctx, forwarder)
	s.joinedRooms[room] = joinedRoom{handle: res.Handle, stop: stop}
	s.log.Debug("Room joined", "room", room, "users", len(res.UserIDs))
	return nil
}

// leaveRoom is a no-op when the room was not joined.
func (s *ChatSession) leaveRoom(ctx context.Context, room string) error {
	joined, ok := s.joinedRooms[room]
	if !ok {
		return nil
	}
	delete(s.joinedRooms, room)
	return s.cleanupRoom(ctx, joined)
}

// cleanupRoom drops the handle first, releasing the room stream, then stops the forwarder.
// The forwarder is stopped even when the drop failed.
func (s *ChatSession) cleanupRoom(ctx context.Context, joined joinedRoom) error {
	err := s.roomManager.DropUserSessionHandle(ctx, joined.handle)
	joined.stop()
	if err != nil {
		s.log.Warn("Session handle orphaned, room still lists the session",
			"room", joined.handle.Room(), "error", err)
		return fmt.Errorf("leaving room %q: %w", joined.handle.Room(), err)
	}
	return nil
}

// replayHistory pushes the retained messages into the stream as if just received.
func (s *ChatSession) replayHistory(ctx context.Context, room string) error {
	history, err := s.roomManager.GetHistory(ctx, room)
	if err != nil {
		return err
	}
	for _, msg := range history {
		if err := s.deliver(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// deliver gives up when either the command or the session itself is done,
// nobody reads the stream of a session whose connection is gone.
func (s *ChatSession) deliver(ctx context.Context, evt event.Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	case s.events <- evt:
		return nil
	}
}

// LeaveAllRooms leaves every joined room. A failing room does not prevent
// the others from being left, failures are returned together.
func (s *ChatSession) LeaveAllRooms(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveAllRooms(ctx)
}

func (s *ChatSession) leaveAllRooms(ctx context.Context) error {
	drained := lo.Values(s.joinedRooms)
	clear(s.joinedRooms)

	var err error
	for _, joined := range drained {
		err = multierr.Append(err, s.cleanupRoom(ctx, joined))
	}
	return err
}

// JoinedRooms returns the rooms currently joined, sorted.
func (s *ChatSession) JoinedRooms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := lo.Keys(s.joinedRooms)
	slices.Sort(rooms)
	return rooms
}

// Recv returns the next event coming from any joined room.
// It fails with ErrChannelClosed once the session is closed and every pending event was read.
func (s *ChatSession) Recv(ctx context.Context) (event.Event, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case evt, ok := <-s.events:
		if !ok {
			return nil, errors.ErrChannelClosed
		}
		return evt, nil
	}
}

// Close terminates the session: every room is left, every forwarder has returned
// and the stream is closed. Calling Close again does nothing.
func (s *ChatSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.leaveAllRooms(ctx)
	s.supervisor.Wait()
	close(s.events)
	s.log.Debug("Session closed")
	return err
}
