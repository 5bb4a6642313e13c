package registry

import (
	"context"
	"sync"
)

// Channel is the send side of one live client connection. The transport layer
// provides the implementation; everything above it only ever sends.
type Channel interface {
	Send(ctx context.Context, message any) error
}

// Entry is one (player, channel) pair from a room snapshot.
type Entry struct {
	PlayerID string
	Channel  Channel
}

// Registry is the process-wide index of reachable client connections, keyed by
// room and player. Entries are ephemeral: created on a successful join, dropped
// on disconnect or send failure. The durable room record is never touched here.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Channel
}

func New() *Registry {
	return &Registry{
		rooms: make(map[string]map[string]Channel),
	}
}

// Register - inserts or replaces the channel for the (room, player) pair.
func (that *Registry) Register(roomID, playerID string, channel Channel) {
	that.mu.Lock()
	defer that.mu.Unlock()

	players, ok := that.rooms[roomID]
	if !ok {
		players = make(map[string]Channel)
		that.rooms[roomID] = players
	}

	players[playerID] = channel
}

// Unregister - removes the (room, player) entry; when the room's last
// connection goes, the room's in-memory entry goes with it.
func (that *Registry) Unregister(roomID, playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	players, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(players, playerID)

	if len(players) == 0 {
		delete(that.rooms, roomID)
	}
}

// Channels - returns a snapshot of the room's current connections, safe to
// iterate while other goroutines mutate the registry.
func (that *Registry) Channels(roomID string) []Entry {
	that.mu.RLock()
	defer that.mu.RUnlock()

	players := that.rooms[roomID]

	entries := make([]Entry, 0, len(players))
	for playerID, channel := range players {
		entries = append(entries, Entry{PlayerID: playerID, Channel: channel})
	}

	return entries
}

// HasConnections - reports whether any connection is still registered for the room.
func (that *Registry) HasConnections(roomID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms[roomID]) > 0
}
