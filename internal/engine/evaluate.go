package engine

import (
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

// Evaluate determines the result of a board of the given edge length.
// It returns the winning mark, entity.PlayerTie when the board is full
// with no winner, or the empty string while the game is still open.
// Win detection has priority over the fullness check.
func Evaluate(board []string, size int) string {
	for _, line := range winLines(size) {
		first := board[line[0]]
		if first == entity.EmptyCell {
			continue
		}

		complete := true
		for _, cell := range line[1:] {
			if board[cell] != first {
				complete = false
				break
			}
		}

		if complete {
			return first
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return ""
		}
	}

	return entity.PlayerTie
}

// winLines enumerates every row, every column and both main diagonals.
func winLines(size int) [][]int {
	lines := make([][]int, 0, 2*size+2)

	for row := 0; row < size; row++ {
		line := make([]int, size)
		for col := 0; col < size; col++ {
			line[col] = row*size + col
		}
		lines = append(lines, line)
	}

	for col := 0; col < size; col++ {
		line := make([]int, size)
		for row := 0; row < size; row++ {
			line[row] = row*size + col
		}
		lines = append(lines, line)
	}

	main := make([]int, size)
	anti := make([]int, size)
	for i := 0; i < size; i++ {
		main[i] = i*size + i
		anti[i] = i*size + (size - 1 - i)
	}

	return append(lines, main, anti)
}
