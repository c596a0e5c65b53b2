package websocket

import (
	"bufio"
	"encoding/json"
	"sync"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is the request/response body shared by all actions.
type Payload struct {
	Participant *entity.Participant            `json:"participant,omitempty"`
	Room        *entity.Room                   `json:"room,omitempty"`
	RoomID      string                         `json:"room_id,omitempty"`
	Name        string                         `json:"name,omitempty"`
	Size        int                            `json:"size,omitempty"`
	Type        string                         `json:"type,omitempty"`
	Difficulty  string                         `json:"difficulty,omitempty"`
	Cell        *int                           `json:"cell,omitempty"`
	Card        string                         `json:"card,omitempty"`
	Actor       string                         `json:"actor,omitempty"`
	Stats       map[string]*entity.PlayerStats `json:"stats,omitempty"`
	Error       string                         `json:"error,omitempty"`
}

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool   // whether this frame ends the message
	opCode  byte   // operation code (text, binary, close, ...)
	length  uint64 // payload length
	payload []byte // frame payload
}

// connection wraps one hijacked socket. Writes from the handler and from
// room broadcasts interleave, so they serialize on the mutex.
type connection struct {
	mu    sync.Mutex
	bufrw *bufio.ReadWriter
}

// session is the per-connection state: who is attached and which room
// they are in, used for implicit departure on disconnect.
type session struct {
	participantID string
	roomID        string
}
