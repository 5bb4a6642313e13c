package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/playgrid/tictactoe-rooms/internal/entity"
	"github.com/playgrid/tictactoe-rooms/internal/registry"
	"github.com/playgrid/tictactoe-rooms/internal/repository"
	"github.com/playgrid/tictactoe-rooms/internal/tictactoe"
)

// maxUpdateRetries bounds the read-apply-write cycle on version conflicts.
const maxUpdateRetries = 3

var ErrTooManyConflicts = errors.New("room update kept conflicting with concurrent writers")

type roomRepo interface {
	GetOrCreate(ctx context.Context, id string) (*entity.Room, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	All(ctx context.Context) ([]*entity.Room, error)
}

type connRegistry interface {
	Register(roomID, playerID string, channel registry.Channel)
	Unregister(roomID, playerID string)
	Channels(roomID string) []registry.Entry
	HasConnections(roomID string) bool
}

// RoomManager keeps the durable room record, the connection registry, and every
// connected client's view of a room in sync. The durable record is the single
// source of truth: every mutation is a read-apply-persist cycle against it, and
// every broadcast re-reads it first.
type RoomManager struct {
	logger *slog.Logger

	rooms roomRepo
	conns connRegistry
}

func NewRoomManager(logger *slog.Logger, rooms roomRepo, conns connRegistry) *RoomManager {
	return &RoomManager{
		logger: logger,

		rooms: rooms,
		conns: conns,
	}
}

// Join - runs the join protocol for a new connection: get-or-create the room
// record, assign a symbol, persist membership, register the channel, send the
// joining client its snapshot and announce the new state to the room.
//
// A third distinct player gets apperror.ErrRoomFull back before anything is
// registered or written.
func (that *RoomManager) Join(ctx context.Context, roomID, playerID string, channel registry.Channel) (*entity.Room, error) {
	log := that.logger.With("method", "Join", "roomID", roomID, "playerID", playerID)

	var symbol string

	room, err := that.mutateRoom(ctx, roomID, that.rooms.GetOrCreate, func(room *entity.Room) error {
		assigned, err := tictactoe.AssignSymbol(room, playerID)
		if err != nil {
			return err
		}

		symbol = assigned

		return nil
	})
	if err != nil {
		return nil, err
	}

	that.conns.Register(roomID, playerID, channel)

	snapshot := that.stateMessage(room)
	snapshot.YourSymbol = symbol
	if err = channel.Send(ctx, snapshot); err != nil {
		// the read loop will hit the same dead connection and clean up
		log.Warn("failed to send join snapshot", "error", err)
	}

	log.Info("player joined room", "symbol", symbol, "status", room.Status)

	that.Broadcast(ctx, roomID)

	return room, nil
}

// MakeMove - validates and applies a move for the player, persists the result
// and announces it. Validation failures are returned to the caller untouched
// and cause no write and no broadcast.
func (that *RoomManager) MakeMove(ctx context.Context, roomID, playerID string, cell int) error {
	_, err := that.mutateRoom(ctx, roomID, that.rooms.GetByID, func(room *entity.Room) error {
		return tictactoe.ApplyMove(room, playerID, cell)
	})
	if err != nil {
		return err
	}

	that.Broadcast(ctx, roomID)

	return nil
}

// ResetGame - restarts a finished match and announces the fresh board.
func (that *RoomManager) ResetGame(ctx context.Context, roomID, playerID string) error {
	log := that.logger.With("method", "ResetGame", "roomID", roomID, "playerID", playerID)

	_, err := that.mutateRoom(ctx, roomID, that.rooms.GetByID, func(room *entity.Room) error {
		return tictactoe.ResetBoard(room)
	})
	if err != nil {
		return err
	}

	log.Info("game reset")

	that.Broadcast(ctx, roomID)

	return nil
}

// Disconnect - removes the connection from the registry, takes the player off
// the durable record (forfeiting any match in progress when fewer than two
// players remain) and announces the new state to whoever is still connected.
func (that *RoomManager) Disconnect(ctx context.Context, roomID, playerID string) {
	log := that.logger.With("method", "Disconnect", "roomID", roomID, "playerID", playerID)

	that.conns.Unregister(roomID, playerID)

	_, err := that.mutateRoom(ctx, roomID, that.rooms.GetByID, func(room *entity.Room) error {
		tictactoe.RemovePlayer(room, playerID)
		return nil
	})
	if err != nil {
		log.Error("failed to persist disconnect", "error", err)
	}

	if that.conns.HasConnections(roomID) {
		that.Broadcast(ctx, roomID)
	}

	log.Info("player disconnected")
}

// Broadcast - reloads the authoritative record and fans the state out to every
// registered connection, each message differing only in YourSymbol. A failed
// send drops that connection from the registry and the fan-out continues.
func (that *RoomManager) Broadcast(ctx context.Context, roomID string) {
	log := that.logger.With("method", "Broadcast", "roomID", roomID)

	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		log.Warn("skipping broadcast, could not reload room", "error", err)
		return
	}

	for _, entry := range that.conns.Channels(roomID) {
		message := that.stateMessage(room)
		message.YourSymbol = room.SymbolOf(entry.PlayerID)

		if err = entry.Channel.Send(ctx, message); err != nil {
			log.Warn("failed to send game state, dropping connection", "playerID", entry.PlayerID, "error", err)
			that.conns.Unregister(roomID, entry.PlayerID)
		}
	}
}

// Rooms - returns every known room record for the listing endpoint.
func (that *RoomManager) Rooms(ctx context.Context) ([]*entity.Room, error) {
	rooms, err := that.rooms.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

// mutateRoom - one read-apply-persist cycle against the durable record,
// retried on version conflicts. An error from apply aborts the cycle with
// nothing written.
func (that *RoomManager) mutateRoom(
	ctx context.Context,
	roomID string,
	load func(ctx context.Context, id string) (*entity.Room, error),
	apply func(room *entity.Room) error,
) (*entity.Room, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		room, err := load(ctx, roomID)
		if err != nil {
			return nil, err
		}

		if err = apply(room); err != nil {
			return nil, err
		}

		err = that.rooms.Update(ctx, room)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to update room: %w", err)
		}

		return room, nil
	}

	return nil, ErrTooManyConflicts
}

func (that *RoomManager) stateMessage(room *entity.Room) GameStateMessage {
	return GameStateMessage{
		Type:           MessageTypeGameState,
		Board:          room.Board[:],
		CurrentTurn:    room.CurrentTurn,
		Status:         room.Status,
		PlayerCount:    room.PlayerCount(),
		PlayersSymbols: room.PlayerSymbols,
	}
}
