package tictactoe

import (
	"fmt"

	"github.com/playgrid/tictactoe-rooms/internal/apperror"
	"github.com/playgrid/tictactoe-rooms/internal/entity"
)

// AssignSymbol - gives the joining player a symbol and records its membership.
// A returning player keeps its symbol; the first joiner gets X, the second
// distinct joiner gets O and starts the match. A third distinct player is
// rejected without touching the room.
func AssignSymbol(room *entity.Room, playerID string) (string, error) {
	symbol, ok := room.PlayerSymbols[playerID]

	switch {
	case ok:
		// reconnect, keep the old symbol
	case len(room.PlayerSymbols) == 0:
		symbol = entity.SymbolX
		room.PlayerSymbols[playerID] = symbol
	case len(room.PlayerSymbols) == 1:
		symbol = entity.SymbolO
		room.PlayerSymbols[playerID] = symbol
		room.Status = entity.StatusPlaying
	default:
		return "", fmt.Errorf("%w: room %s", apperror.ErrRoomFull, room.ID)
	}

	if !room.HasPlayer(playerID) {
		room.PlayersInRoom = append(room.PlayersInRoom, playerID)
	}

	return symbol, nil
}

// ApplyMove - validates and applies a single move. A rejected move leaves the
// room untouched.
func ApplyMove(room *entity.Room, playerID string, cell int) error {
	if err := validateMove(room, playerID, cell); err != nil {
		return err
	}

	symbol := room.SymbolOf(playerID)
	room.Board[cell] = symbol

	updateStatus(room, symbol)

	return nil
}

// ResetBoard - restarts a finished match. The room returns to playing only when
// both symbols are still assigned; with a single player left it goes back to
// waiting instead.
func ResetBoard(room *entity.Room) error {
	if !room.IsFinished() {
		return apperror.ErrGameNotFinished
	}

	room.ClearBoard()

	if len(room.PlayerSymbols) == 2 {
		room.Status = entity.StatusPlaying
	} else {
		room.Status = entity.StatusWaiting
	}

	return nil
}

// RemovePlayer - drops the player from the room. Losing the second player
// forfeits any match in progress: the board is cleared and the room waits again.
func RemovePlayer(room *entity.Room, playerID string) {
	for i, id := range room.PlayersInRoom {
		if id == playerID {
			room.PlayersInRoom = append(room.PlayersInRoom[:i], room.PlayersInRoom[i+1:]...)
			break
		}
	}

	delete(room.PlayerSymbols, playerID)

	if len(room.PlayerSymbols) < 2 {
		room.ClearBoard()
		room.Status = entity.StatusWaiting
	}
}

// validateMove - checks if the move is valid.
func validateMove(room *entity.Room, playerID string, cell int) error {
	if cell < 0 || cell >= len(room.Board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if room.SymbolOf(playerID) != room.CurrentTurn {
		return apperror.ErrNotYourTurn
	}

	if !room.IsPlaying() {
		return apperror.ErrGameNotPlaying
	}

	if room.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateStatus - checks the game status after a move.
func updateStatus(room *entity.Room, symbol string) {
	switch result := room.DetermineResult(); result {
	case entity.SymbolX, entity.SymbolO:
		room.Status = entity.WinningStatus(result)
	case entity.StatusDraw:
		room.Status = entity.StatusDraw
	default:
		room.CurrentTurn = toggleSymbol(symbol)
	}
}

func toggleSymbol(symbol string) string {
	if symbol == entity.SymbolX {
		return entity.SymbolO
	}
	return entity.SymbolX
}
