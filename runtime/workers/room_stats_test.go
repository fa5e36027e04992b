package workers

import (
	"chat-rooms/mocks"
	"chat-rooms/runtime"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRoomStatsWorker_Samples_Periodically(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	roomManager := mocks.NewMockIRoomManager(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sampled := make(chan struct{}, 10)
	roomManager.EXPECT().Stats(gomock.Any()).DoAndReturn(
		func(ctx context.Context) ([]runtime.RoomStats, error) {
			sampled <- struct{}{}
			return []runtime.RoomStats{{Name: "general", Users: 1, Sessions: 2}}, nil
		}).MinTimes(2)

	done := make(chan error, 1)
	go func() {
		done <- NewRoomStatsWorker(log, roomManager, 5*time.Millisecond).Run(ctx)
	}()

	// Given two samples were taken
	<-sampled
	<-sampled

	// When the context is canceled
	cancel()

	// Then the worker stops cleanly
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("stats worker did not stop")
	}
}

func TestRoomStatsWorker_Report_Survives_Errors(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	roomManager := mocks.NewMockIRoomManager(ctrl)

	roomManager.EXPECT().Stats(gomock.Any()).Return(nil, fmt.Errorf("boom")).Times(1)

	NewRoomStatsWorker(log, roomManager, time.Second).Report(context.Background())
}
