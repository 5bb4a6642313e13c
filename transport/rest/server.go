package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/playgrid/tictactoe-rooms/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type roomLister interface {
	Rooms(ctx context.Context) ([]*entity.Room, error)
}

type Server struct {
	logger *slog.Logger
	rooms  roomLister
}

func New(logger *slog.Logger, rooms roomLister) *Server {
	return &Server{
		logger: logger,
		rooms:  rooms,
	}
}

// Start - starts the HTTP server and blocks until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", that.handleRoot)
	mux.HandleFunc("GET /ping", that.handlePing)
	mux.HandleFunc("GET /rooms", that.handleRooms)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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
