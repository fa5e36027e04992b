package main

import (
	"chat-rooms/infrastructure/ws"
	"chat-rooms/internal"
	"chat-rooms/moderation"
	"chat-rooms/runtime"
	"chat-rooms/runtime/workers"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Deferred cleanups run before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Rooms, fixed for the process lifetime
	rooms, err := internal.LoadRooms(config.RoomsFilepath)
	if err != nil {
		return exitConfig, err
	}

	moderator, err := buildModerator(config, log)
	if err != nil {
		return exitConfig, err
	}

	roomManager, err := runtime.NewRoomManagerFromMetadata(log, moderator, rooms)
	if err != nil {
		return exitConfig, err
	}
	log.Info(fmt.Sprintf("%d rooms loaded", len(rooms)))

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewRoomStatsWorker(log, roomManager, config.MetricInterval))
	go sup.Run(ctx)

	// 5. HTTP & Websocket
	chatServer := ws.NewChatServer(log, roomManager,
		config.RestartInterval, config.ShutdownTimeout, config.WriteTimeout)
	server := &http.Server{
		Addr:        config.Address(),
		Handler:     ws.NewRouter(chatServer),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting chat server", "address", config.Address())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		sup.Stop()
		return exitRuntime, err
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("Http server shutdown incomplete", "error", err)
	}
	// Websocket connections are hijacked, Shutdown does not wait for them
	chatServer.Wait()
	sup.Stop()
	sup.Wait()
	log.Info("Program stopped cleanly")

	return exitOK, nil
}

// buildModerator loads the censored dictionaries when a directory is configured.
func buildModerator(config internal.Config, log *slog.Logger) (*moderation.Moderator, error) {
	if config.CensoredDir == "" {
		return nil, nil
	}
	charReplacement, err := config.CharacterRune()
	if err != nil {
		return nil, err
	}

	data, err := runtime.NewCensoredLoader(os.DirFS(config.CensoredDir)).LoadAll(".")
	if err != nil {
		return nil, fmt.Errorf("loading censored words: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored files loaded [%s]",
		len(data.Languages), strings.Join(data.Languages, ",")))
	log.Info(fmt.Sprintf("%d unique censored words loaded", len(data.Words)))

	return moderation.NewModerator(data.Words, charReplacement, log)
}
