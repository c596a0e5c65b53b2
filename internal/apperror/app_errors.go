package apperror

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomFull          = errors.New("room is full")
	ErrGameNotActive     = errors.New("game is not active")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrCardUnavailable   = errors.New("card is not available")
	ErrInvalidMove       = errors.New("cell is occupied or blocked")
	ErrInvalidBoardSize  = errors.New("unsupported board size")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrUserNotFound      = errors.New("user not found")
)
