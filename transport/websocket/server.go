package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
	"github.com/cardgridgames/cardgrid-backend/internal/pkg"
)

var ErrUnknownAction = errors.New("unknown action")

// gamePlayService is the slice of the game layer the transport needs.
type gamePlayService interface {
	CreateRoom(ctx context.Context, roomID, participantID, name string, size int, roomType, botDifficulty string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, participantID, name string) (*entity.Room, error)
	LeaveRoom(ctx context.Context, roomID, participantID string) error
	MakeTurn(ctx context.Context, roomID, participantID string, cell int, card entity.CardKind) (*entity.Room, error)
	RoomState(roomID string) (*entity.Room, error)
}

type handlerFunc func(ctx context.Context, msg *Message, conn *connection, sess *session) error

type Server struct {
	logger *slog.Logger
	game   gamePlayService
	hub    *Hub

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, game gamePlayService, hub *Hub) *Server {
	server := &Server{
		logger:   logger,
		game:     game,
		hub:      hub,
		handlers: make(map[string]handlerFunc),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["room:new"] = server.handleNewRoom
	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["room:turn"] = server.handleTurn
	server.handlers["room:state"] = server.handleRoomState
	server.handlers["room:leave"] = server.handleLeaveRoom

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	that.handleSessionCookie(writer, req, log)

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := generateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		return
	}

	rawConn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer rawConn.Close()

	log.Info("WebSocket connection established")

	conn := &connection{bufrw: bufrw}
	sess := &session{}

	defer that.dropSession(ctx, sess)

	if err = that.handleMessages(ctx, conn, sess); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, conn *connection, sess *session) error {
	log := that.logger.With("method", "handleMessages")

	for {
		reqBody, err := readRequest(conn.bufrw)
		if err != nil {
			log.Error("error reading message", "error", err)
			return err
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("error processing message", "error", fmt.Errorf("%w: %s", ErrUnknownAction, message.Action))
			continue
		}

		if err = handler(ctx, &message, conn, sess); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// dropSession - implicit departure: a closed connection leaves its room.
func (that *Server) dropSession(ctx context.Context, sess *session) {
	if sess.participantID == "" {
		return
	}

	that.hub.Unregister(sess.participantID)

	if sess.roomID == "" {
		return
	}

	if err := that.game.LeaveRoom(ctx, sess.roomID, sess.participantID); err != nil {
		that.logger.Error("failed to leave room on disconnect", "roomID", sess.roomID, "error", err)
	}
}

// handleSessionCookie - handles the user session cookie.
func (that *Server) handleSessionCookie(writer http.ResponseWriter, req *http.Request, log *slog.Logger) {
	cookie, err := req.Cookie("user_session")
	if err != nil {
		cookie = &http.Cookie{
			Name:    "user_session",
			Value:   pkg.GenerateParticipantID(),
			Expires: time.Now().Add(24 * time.Hour),
			Path:    "/ws",
		}
		http.SetCookie(writer, cookie)
		log.Info("session cookie not found, new one created", "cookie", cookie.Value)
		return
	}

	log.Info("session cookie found", "cookie", cookie.Value)
}
