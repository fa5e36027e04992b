package workers

import (
	"chat-rooms/contract"
	"context"
	"log/slog"
	"time"
)

// RoomStatsWorker periodically samples every room and logs its presence and lag figures.
// Sampling takes each room lock briefly, one room at a time.
type RoomStatsWorker struct {
	log            *slog.Logger
	roomManager    contract.IRoomManager
	metricInterval time.Duration
}

func NewRoomStatsWorker(log *slog.Logger, roomManager contract.IRoomManager, metricInterval time.Duration) *RoomStatsWorker {
	return &RoomStatsWorker{log: log, roomManager: roomManager, metricInterval: metricInterval}
}

func (w *RoomStatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping room stats")
			return nil
		case <-ticker.C:
			w.Report(ctx)
		}
	}
}

func (w *RoomStatsWorker) Report(ctx context.Context) {
	stats, err := w.roomManager.Stats(ctx)
	if err != nil {
		w.log.Warn("Room stats unavailable", "error", err)
		return
	}
	for _, s := range stats {
		w.log.Info("Room stats",
			"room", s.Name,
			"users", s.Users,
			"sessions", s.Sessions,
			"subscribers", s.Subscribers,
			"history", s.History,
			"dropped", s.Dropped)
	}
}
