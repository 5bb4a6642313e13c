package websocket

import (
	"encoding/json"
	"errors"

	"github.com/playgrid/tictactoe-rooms/internal/apperror"
	"github.com/playgrid/tictactoe-rooms/internal/repository"
)

const (
	actionMakeMove  = "make_move"
	actionResetGame = "reset_game"
)

// Client-facing error strings. Existing clients match on these, keep them stable.
const (
	msgRoomFull        = "Room is full or game in progress."
	msgRoomNotFound    = "Game room not found."
	msgInvalidPosition = "Invalid move position."
	msgNotYourTurn     = "It's not your turn."
	msgNotPlaying      = "Game is not in playing state."
	msgCellTaken       = "Position already taken."
	msgNotFinished     = "Game must be finished to reset."
	msgUnknownType     = "Unknown message type."
)

// clientMessage is the envelope clients send. Position stays raw so a
// non-integer value is reported as an invalid move instead of killing the
// connection on a decode error.
type clientMessage struct {
	Type     string          `json:"type"`
	Position json.RawMessage `json:"position,omitempty"`
}

// Cell - extracts the target cell index, reporting whether it was an integer.
func (that *clientMessage) Cell() (int, bool) {
	if len(that.Position) == 0 || string(that.Position) == "null" {
		return 0, false
	}

	var cell int
	if err := json.Unmarshal(that.Position, &cell); err != nil {
		return 0, false
	}

	return cell, true
}

// rejectionMessage - maps a rejected operation to the string the offending
// sender should see. Errors outside this set are transport or storage failures
// and close the connection instead.
func rejectionMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, apperror.ErrInvalidCell):
		return msgInvalidPosition, true
	case errors.Is(err, apperror.ErrNotYourTurn):
		return msgNotYourTurn, true
	case errors.Is(err, apperror.ErrGameNotPlaying):
		return msgNotPlaying, true
	case errors.Is(err, apperror.ErrCellOccupied):
		return msgCellTaken, true
	case errors.Is(err, apperror.ErrGameNotFinished):
		return msgNotFinished, true
	case errors.Is(err, repository.ErrRoomNotFound):
		return msgRoomNotFound, true
	default:
		return "", false
	}
}
