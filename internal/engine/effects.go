package engine

import (
	"time"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

// effectFunc applies one card effect before the pending placement. The
// returned flag reports whether the effect superseded the placement, in
// which case no mark is written for this action. Effects never fail; an
// effect whose target is invalid degrades to a no-op so a shared room can
// never be corrupted by a bad card play.
type effectFunc func(room *entity.Room, actor *entity.Participant, cell int) bool

// effects is the closed dispatch table over card kinds. Adding a card
// means adding exactly one entry here plus its catalog definition.
var effects = map[entity.CardKind]effectFunc{
	entity.CardBlock:      applyBlock,
	entity.CardDoubleMove: applyDoubleMove,
	entity.CardSwapCell:   applySwapCell,
	entity.CardProtection: applyProtection,
	entity.CardGiant:      applyGiant,
	entity.CardShield:     applyShield,
	entity.CardWildcard:   applyNothing,
	entity.CardTeleport:   applyTeleport,
	entity.CardTimeFreeze: applyNothing,
	entity.CardMirror:     applyMirror,
	entity.CardReset:      applyReset,
}

// applyBlock permanently removes the target cell from play. The block is
// the whole action: no mark is placed.
func applyBlock(room *entity.Room, _ *entity.Participant, cell int) bool {
	if !room.Playable(cell) {
		return false
	}

	room.Blocked = append(room.Blocked, cell)

	return true
}

// applyDoubleMove keeps the turn with the actor for one extra placement
// after the pending one.
func applyDoubleMove(room *entity.Room, _ *entity.Participant, _ int) bool {
	room.ExtraTurn = true
	return false
}

// applySwapCell exchanges an opponent-held target cell with the actor's
// first occupied cell. No-op if the target is not opponent-marked, is
// shielded, or the actor has no mark on the board.
func applySwapCell(room *entity.Room, actor *entity.Participant, cell int) bool {
	if cell < 0 || cell >= len(room.Board) {
		return false
	}

	opponentMark := entity.ToggleMark(actor.Mark)
	if room.Board[cell] != opponentMark || room.IsShielded(cell) {
		return false
	}

	own, ok := room.FirstCellWithMark(actor.Mark)
	if !ok {
		return false
	}

	room.Board[cell], room.Board[own] = actor.Mark, opponentMark

	return true
}

// applyProtection arms the standing loss-to-draw flag; it has no effect
// on the current board.
func applyProtection(_ *entity.Room, actor *entity.Participant, _ int) bool {
	actor.Protection = true
	return false
}

// applyGiant arms an extra placement for the start of the actor's next
// match, not this one.
func applyGiant(_ *entity.Room, actor *entity.Participant, _ int) bool {
	actor.Giant = true
	return false
}

// applyShield makes the cell about to be played immune to swap, teleport
// and mirror relocation for the rest of the match.
func applyShield(room *entity.Room, _ *entity.Participant, cell int) bool {
	if !room.Playable(cell) {
		return false
	}

	room.Shielded = append(room.Shielded, cell)

	return false
}

// applyTeleport relocates the actor's first occupied cell to the target
// cell. The relocation is the whole action.
func applyTeleport(room *entity.Room, actor *entity.Participant, cell int) bool {
	if !room.Playable(cell) {
		return false
	}

	own, ok := room.FirstCellWithMark(actor.Mark)
	if !ok || own == cell {
		return false
	}

	room.Board[cell] = actor.Mark
	room.Board[own] = entity.EmptyCell

	return true
}

// applyMirror duplicates the opponent's last logged move onto the
// point-symmetric cell with the actor's own mark, if that cell is open.
func applyMirror(room *entity.Room, actor *entity.Participant, cell int) bool {
	last, ok := room.LastMoveBy(entity.ToggleMark(actor.Mark))
	if !ok {
		return false
	}

	target := room.Size*room.Size - 1 - last.Cell
	if target == cell || !room.Playable(target) || room.IsShielded(target) {
		return false
	}

	room.Board[target] = actor.Mark

	return false
}

// applyReset rewinds the board to its state three move records ago and
// truncates the log. Blocked and shielded cells are permanent and
// survive the rewind. No-op when fewer than three moves exist.
func applyReset(room *entity.Room, _ *entity.Participant, _ int) bool {
	const rewind = 3

	if len(room.Moves) < rewind {
		return false
	}

	room.Moves = room.Moves[:len(room.Moves)-rewind]

	for i := range room.Board {
		room.Board[i] = entity.EmptyCell
	}
	for _, move := range room.Moves {
		room.Board[move.Cell] = move.Mark
	}

	return false
}

func applyNothing(_ *entity.Room, _ *entity.Participant, _ int) bool {
	return false
}

func appendMove(room *entity.Room, actor *entity.Participant, cell int) {
	room.Moves = append(room.Moves, entity.MoveRecord{
		Cell:          cell,
		Mark:          actor.Mark,
		ParticipantID: actor.ID,
		PlayedAt:      time.Now().UTC(),
	})
}
