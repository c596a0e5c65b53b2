package entity

import (
	"slices"
	"time"
)

const (
	StatusWaiting   = "waiting"
	StatusPlaying   = "playing"
	StatusFinished  = "finished"
	StatusAbandoned = "abandoned"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

const (
	PrivateType = "private"
	WithBotType = "bot"
)

// BoardSizes lists the supported board edge lengths.
var BoardSizes = []int{3, 4, 5}

// MoveRecord is one placement in the append-only move log. Records are
// immutable once appended; the log is the basis for the rewind card.
type MoveRecord struct {
	Cell          int       `json:"cell"`
	Mark          string    `json:"mark"`
	ParticipantID string    `json:"participant_id"`
	PlayedAt      time.Time `json:"played_at"`
}

// Room is one match's complete authoritative state. All mutation goes
// through the engine under the registry's per-room lock.
type Room struct {
	ID           string         `json:"id"`
	Size         int            `json:"size"`
	Board        []string       `json:"board"`
	Winner       string         `json:"winner,omitempty"`
	Status       string         `json:"status"`
	Turn         string         `json:"player_turn,omitempty"`
	Participants []*Participant `json:"participants,omitempty"`
	Blocked      []int          `json:"blocked,omitempty"`
	Shielded     []int          `json:"shielded,omitempty"`
	Moves        []MoveRecord   `json:"moves,omitempty"`
	Type         string         `json:"type,omitempty"`

	// ExtraTurn keeps the turn with the acting participant for one more
	// placement (double-move card, giant redemption).
	ExtraTurn bool `json:"extra_turn,omitempty"`
}

func NewRoom(id string, size int, roomType string) *Room {
	return &Room{
		ID:     id,
		Size:   size,
		Board:  make([]string, size*size),
		Turn:   PlayerX,
		Status: StatusWaiting,
		Type:   roomType,
	}
}

func ValidBoardSize(size int) bool {
	return slices.Contains(BoardSizes, size)
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsWithBot() bool {
	return that.Type == WithBotType
}

func (that *Room) IsBlocked(cell int) bool {
	return slices.Contains(that.Blocked, cell)
}

func (that *Room) IsShielded(cell int) bool {
	return slices.Contains(that.Shielded, cell)
}

// Playable reports whether a mark may be placed on the cell right now.
func (that *Room) Playable(cell int) bool {
	if cell < 0 || cell >= len(that.Board) {
		return false
	}

	return that.Board[cell] == EmptyCell && !that.IsBlocked(cell)
}

// ParticipantByID returns the seated participant with the given ID, or nil.
func (that *Room) ParticipantByID(id string) *Participant {
	for _, participant := range that.Participants {
		if participant.ID == id {
			return participant
		}
	}

	return nil
}

// ParticipantByMark returns the participant playing the given mark, or nil.
func (that *Room) ParticipantByMark(mark string) *Participant {
	for _, participant := range that.Participants {
		if participant.Mark == mark {
			return participant
		}
	}

	return nil
}

// Opponent returns the other seated participant, or nil.
func (that *Room) Opponent(id string) *Participant {
	for _, participant := range that.Participants {
		if participant.ID != id {
			return participant
		}
	}

	return nil
}

// LastMoveBy returns the most recent move played with the given mark.
func (that *Room) LastMoveBy(mark string) (MoveRecord, bool) {
	for i := len(that.Moves) - 1; i >= 0; i-- {
		if that.Moves[i].Mark == mark {
			return that.Moves[i], true
		}
	}

	return MoveRecord{}, false
}

// FirstCellWithMark returns the lowest-indexed cell holding the mark.
func (that *Room) FirstCellWithMark(mark string) (int, bool) {
	for i, cell := range that.Board {
		if cell == mark {
			return i, true
		}
	}

	return 0, false
}

// Clone deep-copies the room, participants included. Used both for
// transactional action resolution and for lock-free snapshots.
func (that *Room) Clone() *Room {
	copied := *that

	copied.Board = append([]string(nil), that.Board...)
	copied.Blocked = append([]int(nil), that.Blocked...)
	copied.Shielded = append([]int(nil), that.Shielded...)
	copied.Moves = append([]MoveRecord(nil), that.Moves...)

	copied.Participants = make([]*Participant, 0, len(that.Participants))
	for _, participant := range that.Participants {
		copiedParticipant := *participant

		copiedParticipant.Holdings = make(map[CardKind]*Holding, len(participant.Holdings))
		for kind, holding := range participant.Holdings {
			copiedHolding := *holding
			copiedParticipant.Holdings[kind] = &copiedHolding
		}

		copied.Participants = append(copied.Participants, &copiedParticipant)
	}

	return &copied
}

// ResetForMatch clears all per-match state while keeping the seats.
// Used when a new partner joins a room whose previous match never ran to
// completion.
func (that *Room) ResetForMatch() {
	that.Board = make([]string, that.Size*that.Size)
	that.Moves = nil
	that.Blocked = nil
	that.Shielded = nil
	that.Winner = ""
	that.ExtraTurn = false
}

// ToggleMark returns the opposing mark.
func ToggleMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}

	return PlayerX
}
