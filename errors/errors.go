package errors

import "fmt"

var (
	ErrRoomNotFound   = fmt.Errorf("room not found")
	ErrDuplicateRoom  = fmt.Errorf("room already declared")
	ErrNoRooms        = fmt.Errorf("no room declared")
	ErrAlreadyJoined  = fmt.Errorf("room already joined")
	ErrChannelClosed  = fmt.Errorf("session channel closed")
	ErrSessionClosed  = fmt.Errorf("session closed")
	ErrInvalidCommand = fmt.Errorf("invalid command")
	ErrUnknownCommand = fmt.Errorf("unknown command")
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrEmptyWords     = fmt.Errorf("no words have been found")
)
