package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/playgrid/tictactoe-rooms/internal/apperror"
	"github.com/playgrid/tictactoe-rooms/internal/entity"
	"github.com/playgrid/tictactoe-rooms/internal/registry"
	"github.com/playgrid/tictactoe-rooms/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type roomManager interface {
	Join(ctx context.Context, roomID, playerID string, channel registry.Channel) (*entity.Room, error)
	MakeMove(ctx context.Context, roomID, playerID string, cell int) error
	ResetGame(ctx context.Context, roomID, playerID string) error
	Disconnect(ctx context.Context, roomID, playerID string)
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	return &Server{
		logger: logger,
		rooms:  rooms,
	}
}

// Start - starts the WebSocket server and blocks until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{room}/{player}", func(w http.ResponseWriter, r *http.Request) {
		that.handleConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// handleConnection - accepts one client connection and drives it through the
// join protocol and its receive loop. Each connection runs in its own
// goroutine; messages from a single connection are handled strictly in order.
func (that *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("room")
	playerID := r.PathValue("player")

	log := that.logger.With("method", "handleConnection", "roomID", roomID, "playerID", playerID)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Error("failed to accept websocket connection", "error", err)
		return
	}

	channel := newChannel(conn)

	log.Info("websocket connection established")

	if _, err = that.rooms.Join(ctx, roomID, playerID, channel); err != nil {
		if errors.Is(err, apperror.ErrRoomFull) {
			_ = channel.Send(ctx, usecase.NewErrorMessage(msgRoomFull))
			conn.Close(websocket.StatusNormalClosure, "room is full")
			log.Info("join rejected, room is full")
			return
		}

		log.Error("failed to join room", "error", err)
		conn.Close(websocket.StatusInternalError, "join failed")
		return
	}

	defer func() {
		conn.Close(websocket.StatusNormalClosure, "closing")
		that.rooms.Disconnect(ctx, roomID, playerID)
	}()

	that.readLoop(ctx, conn, channel, roomID, playerID)
}

// readLoop - processes messages from the client until the connection closes.
func (that *Server) readLoop(ctx context.Context, conn *websocket.Conn, channel *wsChannel, roomID, playerID string) {
	log := that.logger.With("method", "readLoop", "roomID", roomID, "playerID", playerID)

	for {
		message, err := channel.Receive(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			switch {
			case status == websocket.StatusNormalClosure, status == websocket.StatusGoingAway,
				errors.Is(err, io.EOF), ctx.Err() != nil:
				log.Info("connection closed")
			default:
				log.Warn("failed to read message", "error", err)
			}
			return
		}

		if err = that.dispatch(ctx, channel, roomID, playerID, message); err != nil {
			log.Error("error processing message", "error", err)
			return
		}
	}
}

// dispatch - routes one client envelope. Validation failures are reported to
// the sender only; a returned error means the connection itself is broken and
// the loop should stop.
func (that *Server) dispatch(ctx context.Context, channel *wsChannel, roomID, playerID string, message *clientMessage) error {
	switch message.Type {
	case actionMakeMove:
		return that.handleMakeMove(ctx, channel, roomID, playerID, message)
	case actionResetGame:
		return that.handleResetGame(ctx, channel, roomID, playerID)
	default:
		return channel.Send(ctx, usecase.NewErrorMessage(msgUnknownType))
	}
}

func (that *Server) handleMakeMove(ctx context.Context, channel *wsChannel, roomID, playerID string, message *clientMessage) error {
	cell, ok := message.Cell()
	if !ok {
		return channel.Send(ctx, usecase.NewErrorMessage(msgInvalidPosition))
	}

	err := that.rooms.MakeMove(ctx, roomID, playerID, cell)
	if err == nil {
		return nil
	}

	if reason, ok := rejectionMessage(err); ok {
		return channel.Send(ctx, usecase.NewErrorMessage(reason))
	}

	return fmt.Errorf("failed to make move: %w", err)
}

func (that *Server) handleResetGame(ctx context.Context, channel *wsChannel, roomID, playerID string) error {
	err := that.rooms.ResetGame(ctx, roomID, playerID)
	if err == nil {
		return nil
	}

	if reason, ok := rejectionMessage(err); ok {
		return channel.Send(ctx, usecase.NewErrorMessage(reason))
	}

	return fmt.Errorf("failed to reset game: %w", err)
}
