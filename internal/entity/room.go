package entity

const (
	StatusWaiting = "waiting"
	StatusPlaying = "playing"
	StatusXWins   = "X_wins"
	StatusOWins   = "O_wins"
	StatusDraw    = "draw"

	SymbolX = "X"
	SymbolO = "O"

	EmptyCell = ""
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Room is the durable record of a single match: one per external room identifier.
// Version is the optimistic-lock sequence; every persisted update bumps it.
type Room struct {
	ID            string            `json:"id"`
	Board         [9]string         `json:"board"`
	PlayerSymbols map[string]string `json:"player_symbols"`
	CurrentTurn   string            `json:"current_turn"`
	Status        string            `json:"status"`
	PlayersInRoom []string          `json:"players_in_room"`
	Version       int64             `json:"version"`
}

func NewRoom(id string) *Room {
	return &Room{
		ID:            id,
		Board:         [9]string{EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell},
		PlayerSymbols: make(map[string]string),
		CurrentTurn:   SymbolX,
		Status:        StatusWaiting,
		PlayersInRoom: []string{},
		Version:       1,
	}
}

// WinningStatus - maps a symbol to its terminal status.
func WinningStatus(symbol string) string {
	if symbol == SymbolX {
		return StatusXWins
	}
	return StatusOWins
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

// IsFinished - reports whether the room is in a terminal status.
func (that *Room) IsFinished() bool {
	return that.Status == StatusXWins || that.Status == StatusOWins || that.Status == StatusDraw
}

// SymbolOf - returns the symbol assigned to the player, or an empty string.
func (that *Room) SymbolOf(playerID string) string {
	return that.PlayerSymbols[playerID]
}

func (that *Room) HasPlayer(playerID string) bool {
	for _, id := range that.PlayersInRoom {
		if id == playerID {
			return true
		}
	}
	return false
}

func (that *Room) PlayerCount() int {
	return len(that.PlayersInRoom)
}

// DetermineResult - returns the winning symbol, StatusDraw on a full board, or an
// empty string while the game can continue.
func (that *Room) DetermineResult() string {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range that.Board {
		if cell == EmptyCell {
			return ""
		}
	}

	return StatusDraw
}

// ClearBoard - empties every cell and hands the first move back to X.
func (that *Room) ClearBoard() {
	for i := range that.Board {
		that.Board[i] = EmptyCell
	}
	that.CurrentTurn = SymbolX
}
