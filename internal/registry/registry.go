package registry

import (
	"sync"

	"github.com/cardgridgames/cardgrid-backend/internal/apperror"
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

// roomHandle pairs a room with its own lock. Every mutation of one room
// runs under that lock; different rooms never contend with each other.
type roomHandle struct {
	mu   sync.Mutex
	room *entity.Room
	gone bool
}

// Registry is the process-wide table of live rooms. It exclusively owns
// every room for the lifetime of its match.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomHandle
}

func New() *Registry {
	return &Registry{
		rooms: make(map[string]*roomHandle),
	}
}

// CreateRoom initializes an empty room with the creator seated as X.
func (that *Registry) CreateRoom(roomID string, size int, roomType string, creator *entity.Participant) (*entity.Room, error) {
	if !entity.ValidBoardSize(size) {
		return nil, apperror.ErrInvalidBoardSize
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, exists := that.rooms[roomID]; exists {
		return nil, apperror.ErrRoomAlreadyExists
	}

	room := entity.NewRoom(roomID, size, roomType)
	creator.Mark = entity.PlayerX
	room.Participants = []*entity.Participant{creator}

	that.rooms[roomID] = &roomHandle{room: room}

	return room, nil
}

// JoinRoom seats the second participant as O and starts the match with
// the first joiner's turn active.
func (that *Registry) JoinRoom(roomID string, joiner *entity.Participant) (*entity.Room, error) {
	handle, err := that.handle(roomID)
	if err != nil {
		return nil, err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if handle.gone {
		return nil, apperror.ErrRoomNotFound
	}

	room := handle.room
	if len(room.Participants) >= 2 {
		return nil, apperror.ErrRoomFull
	}

	// After an abandonment the survivor may hold either mark; the joiner
	// always takes the free one.
	joiner.Mark = entity.PlayerX
	if room.ParticipantByMark(entity.PlayerX) != nil {
		joiner.Mark = entity.PlayerO
	}

	room.Participants = append(room.Participants, joiner)
	room.ResetForMatch()
	room.Status = entity.StatusPlaying
	room.Turn = entity.PlayerX

	return room, nil
}

// LeaveRoom removes a participant. The room is destroyed once empty; with
// one participant left a running match becomes abandoned and a never
// started room goes back to waiting. Either way the next joiner starts a
// fresh match. Returns the remaining participant, if any.
func (that *Registry) LeaveRoom(roomID, participantID string) (*entity.Participant, error) {
	handle, err := that.handle(roomID)
	if err != nil {
		return nil, err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if handle.gone {
		return nil, apperror.ErrRoomNotFound
	}

	room := handle.room
	if room.ParticipantByID(participantID) == nil {
		return nil, apperror.ErrPlayerNotFound
	}

	remaining := make([]*entity.Participant, 0, 1)
	for _, participant := range room.Participants {
		if participant.ID != participantID {
			remaining = append(remaining, participant)
		}
	}
	room.Participants = remaining

	// A bot cannot hold a room open on its own.
	if len(remaining) == 0 || (len(remaining) == 1 && remaining[0].IsBot()) {
		handle.gone = true

		that.mu.Lock()
		delete(that.rooms, roomID)
		that.mu.Unlock()

		return nil, nil
	}

	if room.IsPlaying() {
		room.Status = entity.StatusAbandoned
	} else {
		room.Status = entity.StatusWaiting
	}
	room.Turn = ""
	room.ExtraTurn = false

	return remaining[0], nil
}

// WithRoom runs fn with the room under its own lock. This is the
// linearization point for every action on the room: concurrent calls for
// one room serialize, calls for different rooms proceed independently. An
// action racing room destruction fails with ErrRoomNotFound instead of
// touching the freed room.
func (that *Registry) WithRoom(roomID string, fn func(room *entity.Room) error) error {
	handle, err := that.handle(roomID)
	if err != nil {
		return err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()

	if handle.gone {
		return apperror.ErrRoomNotFound
	}

	return fn(handle.room)
}

// Get returns a deep snapshot of the room, safe to read and serialize
// without holding any lock.
func (that *Registry) Get(roomID string) (*entity.Room, error) {
	var snapshot *entity.Room

	err := that.WithRoom(roomID, func(room *entity.Room) error {
		snapshot = room.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (that *Registry) handle(roomID string) (*roomHandle, error) {
	that.mu.RLock()
	handle, ok := that.rooms[roomID]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return handle, nil
}
