package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cardgridgames/cardgrid-backend/internal/apperror"
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
	"github.com/cardgridgames/cardgrid-backend/internal/pkg"
)

var errNotConnected = errors.New("participant is not connected")

// handleConnect attaches a participant identity to this connection,
// issuing a fresh one when the client has none yet.
func (that *Server) handleConnect(_ context.Context, msg *Message, conn *connection, sess *session) error {
	log := that.logger.With("method", "handleConnect")

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	participantID := ""
	if payload.Participant != nil {
		participantID = payload.Participant.ID
	}

	if participantID == "" {
		participantID = pkg.GenerateParticipantID()
		log.Info("registering new participant", "participantID", participantID)
	}

	sess.participantID = participantID
	that.hub.Register(participantID, conn)

	return sendMessage(conn, msg.Action, Payload{
		Participant: &entity.Participant{ID: participantID, Name: payload.Name},
	})
}

func (that *Server) handleNewRoom(ctx context.Context, msg *Message, conn *connection, sess *session) error {
	if sess.participantID == "" {
		return that.sendErrorResponse(conn, msg.Action, errNotConnected)
	}

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	roomType := payload.Type
	if roomType == "" {
		roomType = entity.PrivateType
	}

	room, err := that.game.CreateRoom(ctx, payload.RoomID, sess.participantID, payload.Name, payload.Size, roomType, payload.Difficulty)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err)
	}

	sess.roomID = room.ID

	return sendMessage(conn, msg.Action, Payload{Room: room})
}

func (that *Server) handleJoinRoom(ctx context.Context, msg *Message, conn *connection, sess *session) error {
	if sess.participantID == "" {
		return that.sendErrorResponse(conn, msg.Action, errNotConnected)
	}

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.game.JoinRoom(ctx, payload.RoomID, sess.participantID, payload.Name)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err)
	}

	sess.roomID = room.ID

	return sendMessage(conn, msg.Action, Payload{Room: room})
}

func (that *Server) handleTurn(ctx context.Context, msg *Message, conn *connection, sess *session) error {
	if sess.participantID == "" {
		return that.sendErrorResponse(conn, msg.Action, errNotConnected)
	}

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Cell == nil {
		return that.sendErrorResponse(conn, msg.Action, apperror.ErrInvalidMove)
	}

	roomID := payload.RoomID
	if roomID == "" {
		roomID = sess.roomID
	}

	room, err := that.game.MakeTurn(ctx, roomID, sess.participantID, *payload.Cell, entity.CardKind(payload.Card))
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err)
	}

	return sendMessage(conn, msg.Action, Payload{Room: room})
}

func (that *Server) handleRoomState(_ context.Context, msg *Message, conn *connection, sess *session) error {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	roomID := payload.RoomID
	if roomID == "" {
		roomID = sess.roomID
	}

	room, err := that.game.RoomState(roomID)
	if err != nil {
		return that.sendErrorResponse(conn, msg.Action, err)
	}

	return sendMessage(conn, msg.Action, Payload{Room: room})
}

func (that *Server) handleLeaveRoom(ctx context.Context, msg *Message, conn *connection, sess *session) error {
	if sess.participantID == "" || sess.roomID == "" {
		return that.sendErrorResponse(conn, msg.Action, apperror.ErrRoomNotFound)
	}

	if err := that.game.LeaveRoom(ctx, sess.roomID, sess.participantID); err != nil {
		return that.sendErrorResponse(conn, msg.Action, err)
	}

	sess.roomID = ""

	return sendMessage(conn, msg.Action, Payload{})
}

// sendErrorResponse reports a failure to the acting participant only;
// precondition failures are never broadcast to the room.
func (that *Server) sendErrorResponse(conn *connection, action string, cause error) error {
	if err := sendMessage(conn, action, Payload{Error: reasonFor(cause)}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}

// reasonFor maps the engine's error taxonomy to client-facing text.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, apperror.ErrRoomAlreadyExists):
		return "room already exists"
	case errors.Is(err, apperror.ErrRoomFull):
		return "room is full"
	case errors.Is(err, apperror.ErrGameNotActive):
		return "game is not active"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "it's not your turn"
	case errors.Is(err, apperror.ErrCardUnavailable):
		return "card is not available"
	case errors.Is(err, apperror.ErrInvalidMove):
		return "cell is occupied or blocked"
	case errors.Is(err, apperror.ErrInvalidBoardSize):
		return "unsupported board size"
	case errors.Is(err, errNotConnected):
		return "connect first"
	default:
		return "internal error"
	}
}
