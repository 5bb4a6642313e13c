package usecase

const (
	MessageTypeGameState = "game_state"
	MessageTypeError     = "error"
)

// GameStateMessage is the full room snapshot sent to every connected client.
// YourSymbol is the only recipient-specific field.
type GameStateMessage struct {
	Type           string            `json:"type"`
	Board          []string          `json:"board"`
	CurrentTurn    string            `json:"current_turn"`
	Status         string            `json:"status"`
	YourSymbol     string            `json:"your_symbol"`
	PlayerCount    int               `json:"player_count"`
	PlayersSymbols map[string]string `json:"players_symbols"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{
		Type:    MessageTypeError,
		Message: message,
	}
}
