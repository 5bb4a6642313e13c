package rest

import (
	"encoding/json"
	"net/http"

	"github.com/playgrid/tictactoe-rooms/internal/entity"
)

// RoomSummary is the read-only view of one room on the listing endpoint.
type RoomSummary struct {
	Board         []string          `json:"board"`
	CurrentTurn   string            `json:"current_turn"`
	Status        string            `json:"status"`
	PlayerCount   int               `json:"player_count"`
	PlayerSymbols map[string]string `json:"player_symbols"`
}

func (that *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("<h1>Tic-Tac-Toe Backend</h1><p>WebSocket endpoint: /ws/{room_id}/{player_id}</p>")); err != nil {
		that.logger.Error("failed to write root response", "error", err)
	}
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleRooms - returns every known room keyed by its identifier.
func (that *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleRooms")

	rooms, err := that.rooms.Rooms(r.Context())
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	summaries := make(map[string]RoomSummary, len(rooms))
	for _, room := range rooms {
		summaries[room.ID] = summarize(room)
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(summaries); err != nil {
		log.Error("failed to encode rooms response", "error", err)
	}
}

func summarize(room *entity.Room) RoomSummary {
	return RoomSummary{
		Board:         room.Board[:],
		CurrentTurn:   room.CurrentTurn,
		Status:        room.Status,
		PlayerCount:   room.PlayerCount(),
		PlayerSymbols: room.PlayerSymbols,
	}
}
