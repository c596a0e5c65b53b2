package service

import (
	"errors"
	"math/rand"

	"github.com/cardgridgames/cardgrid-backend/internal/engine"
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// The optimal tier searches exhaustively only while the position is small
// enough; past this many open cells it falls back to the heuristic tier,
// which does not change the ranking of reachable terminal depths.
const maxExhaustiveCells = 12

type BotService interface {
	ChooseCell(room *entity.Room, mark, difficulty string) (int, error)
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// ChooseCell picks the bot's next cell at the given difficulty. The room
// is read-only here; the caller applies the move through the engine.
func (that *botService) ChooseCell(room *entity.Room, mark, difficulty string) (int, error) {
	available := playableCells(room)
	if len(available) == 0 {
		return 0, ErrNoAvailableMoves
	}

	switch difficulty {
	case entity.BotDifficultyOptimal:
		if len(available) <= maxExhaustiveCells {
			return bestCell(room, mark, available), nil
		}

		return heuristicCell(room, mark, available), nil
	case entity.BotDifficultyHeuristic:
		return heuristicCell(room, mark, available), nil
	default:
		return available[rand.Intn(len(available))], nil //nolint: gosec // game randomness, not crypto
	}
}

// heuristicCell plays an immediate win if one exists, otherwise blocks
// the opponent's immediate win, otherwise plays at random.
func heuristicCell(room *entity.Room, mark string, available []int) int {
	if cell, ok := winningCell(room, mark, available); ok {
		return cell
	}

	if cell, ok := winningCell(room, entity.ToggleMark(mark), available); ok {
		return cell
	}

	return available[rand.Intn(len(available))] //nolint: gosec // game randomness, not crypto
}

func winningCell(room *entity.Room, mark string, available []int) (int, bool) {
	for _, cell := range available {
		room.Board[cell] = mark
		winner := engine.Evaluate(room.Board, room.Size)
		room.Board[cell] = entity.EmptyCell

		if winner == mark {
			return cell, true
		}
	}

	return 0, false
}

// bestCell runs a full minimax search to terminal states. Wins score
// 10−depth, losses depth−10, draws 0, so shallower wins and deeper
// losses are preferred. Ties break toward the first cell in index order.
func bestCell(room *entity.Room, mark string, available []int) int {
	best := available[0]
	bestScore := -100
	alpha, beta := -100, 100

	for _, cell := range available {
		room.Board[cell] = mark
		score := minimax(room, mark, entity.ToggleMark(mark), 1, alpha, beta)
		room.Board[cell] = entity.EmptyCell

		if score > bestScore {
			bestScore = score
			best = cell
		}
		if score > alpha {
			alpha = score
		}
	}

	return best
}

func minimax(room *entity.Room, botMark, turnMark string, depth, alpha, beta int) int {
	switch winner := engine.Evaluate(room.Board, room.Size); winner {
	case botMark:
		return 10 - depth
	case entity.ToggleMark(botMark):
		return depth - 10
	case entity.PlayerTie:
		return 0
	}

	available := playableCells(room)
	if len(available) == 0 {
		return 0
	}

	maximizing := turnMark == botMark

	best := 100
	if maximizing {
		best = -100
	}

	for _, cell := range available {
		room.Board[cell] = turnMark
		score := minimax(room, botMark, entity.ToggleMark(turnMark), depth+1, alpha, beta)
		room.Board[cell] = entity.EmptyCell

		if maximizing {
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if score < best {
				best = score
			}
			if best < beta {
				beta = best
			}
		}

		if beta <= alpha {
			break
		}
	}

	return best
}

func playableCells(room *entity.Room) []int {
	available := make([]int, 0, len(room.Board))
	for cell := range room.Board {
		if room.Playable(cell) {
			available = append(available, cell)
		}
	}

	return available
}
