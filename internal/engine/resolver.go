package engine

import (
	"context"
	"fmt"

	"github.com/cardgridgames/cardgrid-backend/internal/apperror"
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

// CardConsumer is the slice of the progression gateway the resolver
// needs: spending one card from a participant's durable holdings.
type CardConsumer interface {
	ConsumeCard(ctx context.Context, participantID string, kind entity.CardKind) error
}

// Outcome describes what one resolved action did to the room.
type Outcome struct {
	CardUsed entity.CardKind
	Placed   bool

	Finished bool
	Winner   string // winning mark, or entity.PlayerTie on a draw

	ProtectionRedeemedBy string // participant whose loss became a draw
	GiantRedeemedBy      string // participant who spent a stored extra placement
}

// ApplyAction is the single state-transition entry point for a room. It
// validates the action against current authoritative state, consumes and
// applies an optional card, performs the placement and evaluates the
// terminal condition. The caller must hold the room's lock.
//
// Card consumption is not refunded when a later step fails; every other
// mutation is applied to a scratch copy and committed only on success, so
// a rejected action leaves the room untouched.
func ApplyAction(ctx context.Context, room *entity.Room, participantID string, cell int, kind entity.CardKind, cards CardConsumer) (*Outcome, error) {
	if !room.IsPlaying() {
		return nil, apperror.ErrGameNotActive
	}

	actor := room.ParticipantByID(participantID)
	if actor == nil {
		return nil, apperror.ErrPlayerNotFound
	}

	if room.Turn != actor.Mark {
		return nil, apperror.ErrNotYourTurn
	}

	outcome := &Outcome{}

	if kind != "" {
		if err := consumeCard(ctx, actor, kind, cards); err != nil {
			return nil, err
		}

		outcome.CardUsed = kind
	}

	scratch := room.Clone()
	scratchActor := scratch.ParticipantByID(participantID)

	superseded := false
	if kind != "" {
		superseded = effects[kind](scratch, scratchActor, cell)
	}

	if !superseded {
		if !scratch.Playable(cell) {
			return outcome, apperror.ErrInvalidMove
		}

		scratch.Board[cell] = scratchActor.Mark
		appendMove(scratch, scratchActor, cell)
		outcome.Placed = true
	}

	resolveTerminal(scratch, scratchActor, outcome)

	*room = *scratch

	return outcome, nil
}

// consumeCard spends one card through the gateway and mirrors the spend
// on the room-entry snapshot. Applied to live state on purpose: a card is
// use-it-or-lose-it even when the rest of the action is rejected.
func consumeCard(ctx context.Context, actor *entity.Participant, kind entity.CardKind, cards CardConsumer) error {
	if _, known := effects[kind]; !known {
		return apperror.ErrCardUnavailable
	}

	if !actor.Holds(kind) {
		return apperror.ErrCardUnavailable
	}

	if err := cards.ConsumeCard(ctx, actor.ID, kind); err != nil {
		return fmt.Errorf("failed to consume card: %w", err)
	}

	holding := actor.Holdings[kind]
	holding.Available--
	holding.Used++

	return nil
}

// resolveTerminal evaluates the post-action board and either finishes the
// match or passes the turn.
func resolveTerminal(room *entity.Room, actor *entity.Participant, outcome *Outcome) {
	switch winner := Evaluate(room.Board, room.Size); winner {
	case entity.PlayerX, entity.PlayerO:
		finishWithWinner(room, winner, outcome)
		return
	case entity.PlayerTie:
		finish(room, entity.PlayerTie, outcome)
		return
	}

	// Blocked cells keep the board from ever filling up, so a match with
	// no playable cell left is drawn by exhaustion.
	if !hasPlayableCell(room) {
		finish(room, entity.PlayerTie, outcome)
		return
	}

	if room.ExtraTurn {
		room.ExtraTurn = false
		return
	}

	// A giant played this action arms for the next match only; it must
	// not redeem on the very placement it was played with.
	if outcome.Placed && actor.Giant && outcome.CardUsed != entity.CardGiant && movesBy(room, actor.ID) == 1 {
		actor.Giant = false
		outcome.GiantRedeemedBy = actor.ID
		return
	}

	room.Turn = entity.ToggleMark(actor.Mark)
}

// finishWithWinner ends the match, converting the loss into a draw when
// the loser holds an armed protection.
func finishWithWinner(room *entity.Room, winner string, outcome *Outcome) {
	loser := room.ParticipantByMark(entity.ToggleMark(winner))
	if loser != nil && loser.Protection {
		loser.Protection = false
		outcome.ProtectionRedeemedBy = loser.ID
		finish(room, entity.PlayerTie, outcome)
		return
	}

	finish(room, winner, outcome)
}

func finish(room *entity.Room, winner string, outcome *Outcome) {
	room.Winner = winner
	room.Status = entity.StatusFinished
	room.Turn = ""
	room.ExtraTurn = false

	outcome.Finished = true
	outcome.Winner = winner
}

func hasPlayableCell(room *entity.Room) bool {
	for cell := range room.Board {
		if room.Playable(cell) {
			return true
		}
	}

	return false
}

func movesBy(room *entity.Room, participantID string) int {
	count := 0
	for _, move := range room.Moves {
		if move.ParticipantID == participantID {
			count++
		}
	}

	return count
}
