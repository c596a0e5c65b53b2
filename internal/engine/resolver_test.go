package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardgridgames/cardgrid-backend/internal/apperror"
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

type fakeConsumer struct {
	calls []entity.CardKind
	err   error
}

func (that *fakeConsumer) ConsumeCard(_ context.Context, _ string, kind entity.CardKind) error {
	if that.err != nil {
		return that.err
	}

	that.calls = append(that.calls, kind)

	return nil
}

// playingRoom builds a 3x3 room mid-match with participants a (X) and
// b (O), where a holds one card of each given kind.
func playingRoom(kinds ...entity.CardKind) *entity.Room {
	holdings := make(map[entity.CardKind]*entity.Holding, len(kinds))
	for _, kind := range kinds {
		holdings[kind] = &entity.Holding{Available: 1}
	}

	room := entity.NewRoom("room1", 3, entity.PrivateType)
	room.Status = entity.StatusPlaying
	room.Participants = []*entity.Participant{
		{ID: "a", Mark: entity.PlayerX, Holdings: holdings},
		{ID: "b", Mark: entity.PlayerO, Holdings: map[entity.CardKind]*entity.Holding{}},
	}

	return room
}

func mustApply(t *testing.T, room *entity.Room, participantID string, cell int) *Outcome {
	t.Helper()

	outcome, err := ApplyAction(context.Background(), room, participantID, cell, "", nil)
	require.NoError(t, err)

	return outcome
}

func TestApplyAction_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects an action while the room is waiting", func(t *testing.T) {
		// Given: a room without a second participant
		room := entity.NewRoom("room1", 3, entity.PrivateType)
		room.Participants = []*entity.Participant{{ID: "a", Mark: entity.PlayerX}}

		// When: the participant tries to move
		_, err := ApplyAction(ctx, room, "a", 0, "", nil)

		// Then: the action should fail with GameNotActive
		require.ErrorIs(t, err, apperror.ErrGameNotActive)
	})

	t.Run("Rejects an action out of turn", func(t *testing.T) {
		// Given: a playing room where it is X's turn
		room := playingRoom()

		// When: the O participant moves first
		_, err := ApplyAction(ctx, room, "b", 0, "", nil)

		// Then: the action should fail with NotYourTurn
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Rejects a card the participant does not hold", func(t *testing.T) {
		// Given: a playing room where a holds no cards
		room := playingRoom()

		// When: a plays a block card anyway
		_, err := ApplyAction(ctx, room, "a", 0, entity.CardBlock, &fakeConsumer{})

		// Then: the action should fail with CardUnavailable
		require.ErrorIs(t, err, apperror.ErrCardUnavailable)
	})

	t.Run("Rejects a placement on an occupied cell and leaves state unchanged", func(t *testing.T) {
		// Given: a playing room with X on cell 0
		room := playingRoom()
		mustApply(t, room, "a", 0)

		// When: b plays the same cell
		_, err := ApplyAction(ctx, room, "b", 0, "", nil)

		// Then: the action should fail with InvalidMove and the log stays intact
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Len(t, room.Moves, 1)
		assert.Equal(t, entity.PlayerO, room.Turn)
	})
}

func TestApplyAction_PlainMoves(t *testing.T) {
	t.Run("Alternates the turn after a legal non-terminal move", func(t *testing.T) {
		// Given: a fresh playing room
		room := playingRoom()

		// When: a places on cell 0
		outcome := mustApply(t, room, "a", 0)

		// Then: the mark is written, logged, and the turn passes to O
		assert.True(t, outcome.Placed)
		assert.Equal(t, entity.PlayerX, room.Board[0])
		assert.Equal(t, entity.PlayerO, room.Turn)
		require.Len(t, room.Moves, 1)
		assert.Equal(t, "a", room.Moves[0].ParticipantID)
	})

	t.Run("Finishes with a win on the main diagonal", func(t *testing.T) {
		// Given: the sequence a=0, b=1, a=4, b=2
		room := playingRoom()
		mustApply(t, room, "a", 0)
		mustApply(t, room, "b", 1)
		mustApply(t, room, "a", 4)
		mustApply(t, room, "b", 2)

		// When: a completes the diagonal on cell 8
		outcome := mustApply(t, room, "a", 8)

		// Then: the match is finished with X as the winner
		assert.True(t, outcome.Finished)
		assert.Equal(t, entity.PlayerX, outcome.Winner)
		assert.Equal(t, entity.StatusFinished, room.Status)
		assert.Equal(t, entity.PlayerX, room.Winner)
		assert.Empty(t, room.Turn)
	})

	t.Run("Finishes with a draw when the board fills without a line", func(t *testing.T) {
		// Given: a full game with no three in a row
		room := playingRoom()
		for _, move := range []struct {
			id   string
			cell int
		}{
			{"a", 0}, {"b", 4}, {"a", 8}, {"b", 1}, {"a", 7}, {"b", 6}, {"a", 2}, {"b", 5},
		} {
			mustApply(t, room, move.id, move.cell)
		}

		// When: the last cell is played
		outcome := mustApply(t, room, "a", 3)

		// Then: the match ends in a tie
		assert.True(t, outcome.Finished)
		assert.Equal(t, entity.PlayerTie, outcome.Winner)
		assert.Equal(t, entity.PlayerTie, room.Winner)
	})

	t.Run("Rejects an action after the match finished", func(t *testing.T) {
		// Given: a finished room
		room := playingRoom()
		room.Status = entity.StatusFinished

		// When: a moves again
		_, err := ApplyAction(context.Background(), room, "a", 3, "", nil)

		// Then: the action should fail with GameNotActive
		require.ErrorIs(t, err, apperror.ErrGameNotActive)
	})
}

func TestApplyAction_BlockCard(t *testing.T) {
	ctx := context.Background()

	t.Run("Blocked cell can never be played again", func(t *testing.T) {
		// Given: a playing room where a holds a block card
		room := playingRoom(entity.CardBlock)
		consumer := &fakeConsumer{}

		// When: a blocks cell 4
		outcome, err := ApplyAction(ctx, room, "a", 4, entity.CardBlock, consumer)
		require.NoError(t, err)

		// Then: no mark was placed, the card is consumed and the turn passed
		assert.False(t, outcome.Placed)
		assert.Equal(t, entity.CardBlock, outcome.CardUsed)
		assert.Equal(t, []entity.CardKind{entity.CardBlock}, consumer.calls)
		assert.True(t, room.IsBlocked(4))
		assert.Equal(t, entity.PlayerO, room.Turn)

		// When: b then tries to play cell 4, never occupied but blocked
		_, err = ApplyAction(ctx, room, "b", 4, "", nil)

		// Then: the move fails with InvalidMove
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
	})

	t.Run("Card consumption is not refunded on a failed action", func(t *testing.T) {
		// Given: a playing room where a holds a block card
		room := playingRoom(entity.CardBlock)
		consumer := &fakeConsumer{}

		// When: a plays the card on an out-of-range cell
		_, err := ApplyAction(ctx, room, "a", 99, entity.CardBlock, consumer)

		// Then: the action fails, but the card stays spent
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.Len(t, consumer.calls, 1)

		holding := room.ParticipantByID("a").Holdings[entity.CardBlock]
		assert.Equal(t, 0, holding.Available)
		assert.Equal(t, 1, holding.Used)

		// And: the board itself is untouched
		assert.Empty(t, room.Blocked)
		assert.Equal(t, entity.PlayerX, room.Turn)
	})
}

func TestApplyAction_SwapCellCard(t *testing.T) {
	ctx := context.Background()

	t.Run("Swaps an opponent cell with the actor's first cell", func(t *testing.T) {
		// Given: X on cell 0, O on cell 4, a holds a swap card
		room := playingRoom(entity.CardSwapCell)
		mustApply(t, room, "a", 0)
		mustApply(t, room, "b", 4)

		// When: a swaps cell 4
		outcome, err := ApplyAction(ctx, room, "a", 4, entity.CardSwapCell, &fakeConsumer{})
		require.NoError(t, err)

		// Then: the marks exchanged and no extra mark was placed
		assert.False(t, outcome.Placed)
		assert.Equal(t, entity.PlayerO, room.Board[0])
		assert.Equal(t, entity.PlayerX, room.Board[4])
	})

	t.Run("No-op swap still applies the pending placement", func(t *testing.T) {
		// Given: an empty board, a holds a swap card
		room := playingRoom(entity.CardSwapCell)

		// When: a swaps a cell that holds no opponent mark
		outcome, err := ApplyAction(ctx, room, "a", 4, entity.CardSwapCell, &fakeConsumer{})
		require.NoError(t, err)

		// Then: the swap no-ops and the placement lands on the chosen cell
		assert.True(t, outcome.Placed)
		assert.Equal(t, entity.PlayerX, room.Board[4])
		assert.Equal(t, entity.PlayerO, room.Turn)
	})
}

func TestApplyAction_DoubleMoveCard(t *testing.T) {
	t.Run("Grants exactly one extra placement", func(t *testing.T) {
		// Given: a playing room where a holds a double-move card
		room := playingRoom(entity.CardDoubleMove)

		// When: a plays the card with a placement on cell 0
		outcome, err := ApplyAction(context.Background(), room, "a", 0, entity.CardDoubleMove, &fakeConsumer{})
		require.NoError(t, err)

		// Then: the turn stays with a for one more placement
		assert.True(t, outcome.Placed)
		assert.Equal(t, entity.PlayerX, room.Turn)

		// When: a places again
		mustApply(t, room, "a", 1)

		// Then: the turn finally passes to O
		assert.Equal(t, entity.PlayerO, room.Turn)
	})
}

func TestApplyAction_TeleportCard(t *testing.T) {
	t.Run("Relocates the actor's first mark", func(t *testing.T) {
		// Given: X on cell 0, O on cell 1
		room := playingRoom(entity.CardTeleport)
		mustApply(t, room, "a", 0)
		mustApply(t, room, "b", 1)

		// When: a teleports to cell 8
		outcome, err := ApplyAction(context.Background(), room, "a", 8, entity.CardTeleport, &fakeConsumer{})
		require.NoError(t, err)

		// Then: the mark moved and nothing extra was placed
		assert.False(t, outcome.Placed)
		assert.Equal(t, entity.EmptyCell, room.Board[0])
		assert.Equal(t, entity.PlayerX, room.Board[8])
	})

	t.Run("No-op teleport with no own marks places normally", func(t *testing.T) {
		// Given: an empty board
		room := playingRoom(entity.CardTeleport)

		// When: a teleports to cell 3
		outcome, err := ApplyAction(context.Background(), room, "a", 3, entity.CardTeleport, &fakeConsumer{})
		require.NoError(t, err)

		// Then: the card no-ops and the placement proceeds
		assert.True(t, outcome.Placed)
		assert.Equal(t, entity.PlayerX, room.Board[3])
	})
}

func TestApplyAction_MirrorCard(t *testing.T) {
	t.Run("Duplicates the opponent's last move point-symmetrically", func(t *testing.T) {
		// Given: X on 0, O on 2; the mirror of 2 on a 3x3 board is 6
		room := playingRoom(entity.CardMirror)
		mustApply(t, room, "a", 0)
		mustApply(t, room, "b", 2)

		// When: a plays a mirror card with a placement on cell 4
		outcome, err := ApplyAction(context.Background(), room, "a", 4, entity.CardMirror, &fakeConsumer{})
		require.NoError(t, err)

		// Then: cell 6 got the actor's mark and the placement landed on 4
		assert.True(t, outcome.Placed)
		assert.Equal(t, entity.PlayerX, room.Board[6])
		assert.Equal(t, entity.PlayerX, room.Board[4])
	})
}

func TestApplyAction_ResetCard(t *testing.T) {
	ctx := context.Background()

	t.Run("Rewinds the board by three moves and truncates the log", func(t *testing.T) {
		// Given: four logged moves
		room := playingRoom(entity.CardReset)
		mustApply(t, room, "a", 0)
		mustApply(t, room, "b", 1)
		mustApply(t, room, "a", 2)
		mustApply(t, room, "b", 5)

		// When: a plays reset with a placement on cell 8
		outcome, err := ApplyAction(ctx, room, "a", 8, entity.CardReset, &fakeConsumer{})
		require.NoError(t, err)

		// Then: only the first move plus the fresh placement remain
		assert.True(t, outcome.Placed)
		assert.Equal(t, entity.PlayerX, room.Board[0])
		assert.Equal(t, entity.EmptyCell, room.Board[1])
		assert.Equal(t, entity.EmptyCell, room.Board[2])
		assert.Equal(t, entity.EmptyCell, room.Board[5])
		assert.Equal(t, entity.PlayerX, room.Board[8])
		assert.Len(t, room.Moves, 2)
	})

	t.Run("Fails safe as a no-op with fewer than three moves", func(t *testing.T) {
		// Given: a single logged move
		room := playingRoom(entity.CardReset)
		mustApply(t, room, "a", 0)
		mustApply(t, room, "b", 1)

		// When: a plays reset
		outcome, err := ApplyAction(ctx, room, "a", 4, entity.CardReset, &fakeConsumer{})
		require.NoError(t, err)

		// Then: the log is untouched and the placement proceeds
		assert.True(t, outcome.Placed)
		assert.Len(t, room.Moves, 3)
		assert.Equal(t, entity.PlayerX, room.Board[0])
		assert.Equal(t, entity.PlayerO, room.Board[1])
	})
}

func TestApplyAction_ProtectionAndGiant(t *testing.T) {
	ctx := context.Background()

	t.Run("Armed protection converts a loss into a draw", func(t *testing.T) {
		// Given: b holds an armed protection and a is about to win
		room := playingRoom()
		room.ParticipantByID("b").Protection = true
		mustApply(t, room, "a", 0)
		mustApply(t, room, "b", 3)
		mustApply(t, room, "a", 1)
		mustApply(t, room, "b", 4)

		// When: a completes the top row
		outcome := mustApply(t, room, "a", 2)

		// Then: the match is a draw and the protection is spent
		assert.True(t, outcome.Finished)
		assert.Equal(t, entity.PlayerTie, outcome.Winner)
		assert.Equal(t, "b", outcome.ProtectionRedeemedBy)
		assert.False(t, room.ParticipantByID("b").Protection)
	})

	t.Run("Armed giant grants an extra placement on the first move", func(t *testing.T) {
		// Given: a enters the match with a stored giant
		room := playingRoom()
		room.ParticipantByID("a").Giant = true

		// When: a makes the first placement of the match
		outcome := mustApply(t, room, "a", 0)

		// Then: the turn stays with a and the giant is spent
		assert.Equal(t, "a", outcome.GiantRedeemedBy)
		assert.Equal(t, entity.PlayerX, room.Turn)
		assert.False(t, room.ParticipantByID("a").Giant)

		// When: a places a second time
		mustApply(t, room, "a", 1)

		// Then: the turn passes normally
		assert.Equal(t, entity.PlayerO, room.Turn)
	})

	t.Run("Playing the giant card does not redeem it in the same match", func(t *testing.T) {
		// Given: a holds a giant card and has not placed yet
		room := playingRoom(entity.CardGiant)

		// When: a plays it together with the first placement
		outcome, err := ApplyAction(ctx, room, "a", 0, entity.CardGiant, &fakeConsumer{})
		require.NoError(t, err)

		// Then: the flag stays armed for the next match and the turn passes
		assert.True(t, outcome.Placed)
		assert.Empty(t, outcome.GiantRedeemedBy)
		assert.True(t, room.ParticipantByID("a").Giant)
		assert.Equal(t, entity.PlayerO, room.Turn)
	})

	t.Run("Playing the protection card arms the flag without touching the board", func(t *testing.T) {
		// Given: a holds a protection card
		room := playingRoom(entity.CardProtection)

		// When: a plays it with a placement on cell 0
		outcome, err := ApplyAction(ctx, room, "a", 0, entity.CardProtection, &fakeConsumer{})
		require.NoError(t, err)

		// Then: the flag is armed and the placement applied
		assert.True(t, outcome.Placed)
		assert.True(t, room.ParticipantByID("a").Protection)
		assert.Equal(t, entity.PlayerX, room.Board[0])
	})
}

func TestApplyAction_ShieldCard(t *testing.T) {
	t.Run("A shielded cell cannot be swapped away", func(t *testing.T) {
		// Given: a shields their placement on cell 0, then b holds a swap
		room := playingRoom(entity.CardShield)
		room.ParticipantByID("b").Holdings[entity.CardSwapCell] = &entity.Holding{Available: 1}

		_, err := ApplyAction(context.Background(), room, "a", 0, entity.CardShield, &fakeConsumer{})
		require.NoError(t, err)
		require.True(t, room.IsShielded(0))

		// When: b tries to swap the shielded cell
		outcome, err := ApplyAction(context.Background(), room, "b", 0, entity.CardSwapCell, &fakeConsumer{})

		// Then: the swap no-ops and the pending placement fails on the occupied cell
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		assert.NotNil(t, outcome)
		assert.Equal(t, entity.PlayerX, room.Board[0])
	})
}
