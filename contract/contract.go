//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/runtime"
	"context"
	"reflect"
)

// StopFunc cancels a single supervised worker and waits for it to return.
type StopFunc func()

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker) StopFunc
	Stop()
	Wait()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type IRoomManager interface {
	ChatRoomMetadata() []domain.ChatRoomMetadata
	JoinRoom(ctx context.Context, roomName string, id domain.SessionAndUserID) (runtime.RoomJoinResult, error)
	DropUserSessionHandle(ctx context.Context, handle *runtime.UserSessionHandle) error
	SendMessage(ctx context.Context, roomName string, id domain.SessionAndUserID, content string) error
	GetHistory(ctx context.Context, roomName string) ([]event.UserMessage, error)
	Stats(ctx context.Context) ([]runtime.RoomStats, error)
}
