package apperror

import "errors"

var (
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrNotYourTurn     = errors.New("it's not your turn")
	ErrGameNotPlaying  = errors.New("game is not in playing state")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameNotFinished = errors.New("game is not finished yet")
	ErrRoomFull        = errors.New("room is full")
)
