package ws

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/runtime/workers"
	"chat-rooms/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxFrameSize = 1 << 16

type ChatServer struct {
	log             *slog.Logger
	upgrader        websocket.Upgrader
	roomManager     contract.IRoomManager
	restartInterval time.Duration
	shutdownTimeout time.Duration
	writeTimeout    time.Duration
	sessions        sync.WaitGroup
}

func NewChatServer(log *slog.Logger, roomManager contract.IRoomManager,
	restartInterval, shutdownTimeout, writeTimeout time.Duration) *ChatServer {
	return &ChatServer{
		log:         log,
		roomManager: roomManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		restartInterval: restartInterval,
		shutdownTimeout: shutdownTimeout,
		writeTimeout:    writeTimeout,
	}
}

// ListRooms GET /rooms
func (s *ChatServer) ListRooms(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.roomManager.ChatRoomMetadata()); err != nil {
		s.log.Warn("Encoding rooms failed", "error", err)
	}
}

// HandleWS GET /ws
// The user is authenticated upstream and identified by the X-User-ID header or the user_id query parameter.
// Each connection is a new session, a user may open several.
func (s *ChatServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}
	if userID == "" {
		http.Error(w, "missing user id", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}
	c := newWsConn(conn, s.writeTimeout)

	id := domain.SessionAndUserID{SessionID: uuid.NewString(), UserID: userID}
	log := s.log.With("session_id", id.SessionID, "user_id", id.UserID)

	s.sessions.Add(1)
	defer s.sessions.Done()

	ctx, cancel := context.WithCancel(r.Context())
	session := services.NewChatSession(ctx, s.log, id, s.roomManager,
		workers.NewSupervisor(s.log, s.restartInterval))
	log.Info("Session opened")

	// Unblocks readLoop when the server shuts down
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()
	go s.writeLoop(ctx, cancel, c, session)
	s.readLoop(ctx, c, session)
	cancel()

	closeCtx, cancelClose := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancelClose()
	if err := session.Close(closeCtx); err != nil {
		log.Warn("Session teardown incomplete", "error", err)
	}
	_ = c.Close()
	log.Info("Session closed")
}

// Wait blocks until every open session has been torn down.
func (s *ChatServer) Wait() {
	s.sessions.Wait()
}

// readLoop decodes commands until the client goes away.
// A malformed frame or a failing command is reported to the client and does not end the session.
func (s *ChatServer) readLoop(ctx context.Context, c *wsConn, session *services.ChatSession) {
	c.conn.SetReadLimit(maxFrameSize)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame CommandFrame
		var cmd domain.UserCommand
		if err = json.Unmarshal(data, &frame); err == nil {
			cmd, err = ToCommand(frame)
		}
		if err == nil {
			err = session.HandleCommand(ctx, cmd)
		}
		if err != nil {
			s.log.Debug("Command failed", "type", frame.Type, "room", frame.Room, "error", err)
			if sendErr := c.Send(ToErrorFrame(frame, err)); sendErr != nil {
				return
			}
		}
	}
}

// writeLoop pushes the session's merged events to the client.
// A client that can't be written to ends the connection, which unblocks readLoop.
func (s *ChatServer) writeLoop(ctx context.Context, cancel context.CancelFunc, c *wsConn, session *services.ChatSession) {
	defer cancel()
	for {
		evt, err := session.Recv(ctx)
		if err != nil {
			return
		}
		if err := c.Send(ToEventFrame(evt)); err != nil {
			s.log.Debug("Push to client failed", "error", err)
			_ = c.Close()
			return
		}
	}
}

// wsConn serializes writes, gorilla connections support one concurrent writer.
type wsConn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
	sendMu       sync.Mutex
	closeOnce    sync.Once
}

func newWsConn(conn *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{conn: conn, writeTimeout: writeTimeout}
}

func (c *wsConn) Send(frame EventFrame) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteJSON(frame)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}
