package websocket

import (
	"log/slog"
	"sync"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

const (
	actionRoomState    = "room:state"
	actionPlayerJoined = "room:player_joined"
	actionCardUsed     = "room:card_used"
	actionGameOver     = "room:game_over"
	actionOpponentOut  = "room:opponent_out"
)

// Hub tracks live connections by participant ID and implements the
// service layer's broadcast port on top of them.
type Hub struct {
	logger *slog.Logger

	mu          sync.RWMutex
	connections map[string]*connection
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger,
		connections: make(map[string]*connection),
	}
}

func (that *Hub) Register(participantID string, conn *connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.connections[participantID] = conn
}

func (that *Hub) Unregister(participantID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.connections, participantID)
}

// RoomState pushes a full snapshot to everyone in the room.
func (that *Hub) RoomState(room *entity.Room) {
	that.broadcast(room, actionRoomState, Payload{Room: room})
}

func (that *Hub) PlayerJoined(room *entity.Room, joined *entity.Participant) {
	that.broadcast(room, actionPlayerJoined, Payload{Room: room, Participant: joined})
}

func (that *Hub) CardUsed(room *entity.Room, actorID string, kind entity.CardKind) {
	that.broadcast(room, actionCardUsed, Payload{RoomID: room.ID, Actor: actorID, Card: string(kind)})
}

func (that *Hub) GameOver(room *entity.Room, stats map[string]*entity.PlayerStats) {
	that.broadcast(room, actionGameOver, Payload{Room: room, Stats: stats})
}

// OpponentLeft is delivered to the remaining participant only.
func (that *Hub) OpponentLeft(room *entity.Room, remainingID string) {
	that.SendTo(remainingID, actionOpponentOut, Payload{Room: room})
}

// SendTo delivers one message to one participant, if connected.
func (that *Hub) SendTo(participantID, action string, payload Payload) {
	log := that.logger.With("method", "SendTo", "participantID", participantID)

	that.mu.RLock()
	conn, ok := that.connections[participantID]
	that.mu.RUnlock()

	if !ok {
		log.Warn("connection not found for participant")
		return
	}

	if err := sendMessage(conn, action, payload); err != nil {
		log.Error("failed to send message", "error", err)
	}
}

func (that *Hub) broadcast(room *entity.Room, action string, payload Payload) {
	for _, participant := range room.Participants {
		if participant.IsBot() {
			continue
		}

		that.SendTo(participant.ID, action, payload)
	}
}
