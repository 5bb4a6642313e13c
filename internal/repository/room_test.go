package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgrid/tictactoe-rooms/internal/entity"
	"github.com/playgrid/tictactoe-rooms/testing/suite"
)

func TestRoomRepository_GetOrCreate(t *testing.T) {
	t.Run("Creates the default waiting room for an unknown id", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)
		roomID := uuid.NewString()

		// When: GetOrCreate is called for an id nobody has used
		room, err := roomRepo.GetOrCreate(ctx, roomID)

		// Then: the default record is created and persisted
		require.NoError(t, err)
		assert.Equal(t, roomID, room.ID)
		assert.Equal(t, entity.StatusWaiting, room.Status)
		assert.Equal(t, entity.SymbolX, room.CurrentTurn)
		assert.Empty(t, room.PlayerSymbols)

		stored, err := roomRepo.GetByID(ctx, roomID)
		require.NoError(t, err)
		assert.Equal(t, room.Version, stored.Version)
	})

	t.Run("Returns the existing record on a repeat call", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)
		roomID := uuid.NewString()

		// Given: a room that was already created and mutated
		room, err := roomRepo.GetOrCreate(ctx, roomID)
		require.NoError(t, err)

		room.Status = entity.StatusPlaying
		require.NoError(t, roomRepo.Update(ctx, room))

		// When: GetOrCreate runs again for the same id
		again, err := roomRepo.GetOrCreate(ctx, roomID)

		// Then: the mutated record comes back, not a fresh default
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPlaying, again.Status)
	})
}

func TestRoomRepository_GetByID(t *testing.T) {
	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// When: GetByID is called with a non-existent id
		room, err := roomRepo.GetByID(ctx, uuid.NewString())

		// Then: an ErrRoomNotFound error should be returned
		require.ErrorIs(t, err, ErrRoomNotFound)
		assert.Nil(t, room)
	})
}

func TestRoomRepository_Update(t *testing.T) {
	t.Run("Persists changes and bumps the version", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)
		roomID := uuid.NewString()

		// Given: a fresh room
		room, err := roomRepo.GetOrCreate(ctx, roomID)
		require.NoError(t, err)
		initialVersion := room.Version

		// When: updating it
		room.Board[0] = entity.SymbolX
		room.CurrentTurn = entity.SymbolO
		err = roomRepo.Update(ctx, room)

		// Then: the record and the version advanced together
		require.NoError(t, err)
		assert.Equal(t, initialVersion+1, room.Version)

		stored, err := roomRepo.GetByID(ctx, roomID)
		require.NoError(t, err)
		assert.Equal(t, entity.SymbolX, stored.Board[0])
		assert.Equal(t, entity.SymbolO, stored.CurrentTurn)
		assert.Equal(t, room.Version, stored.Version)
	})

	t.Run("Rejects a stale writer with a version conflict", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)
		roomID := uuid.NewString()

		// Given: two readers holding the same version of the record
		_, err := roomRepo.GetOrCreate(ctx, roomID)
		require.NoError(t, err)

		first, err := roomRepo.GetByID(ctx, roomID)
		require.NoError(t, err)
		second, err := roomRepo.GetByID(ctx, roomID)
		require.NoError(t, err)

		// When: the first one wins the write
		first.Board[0] = entity.SymbolX
		require.NoError(t, roomRepo.Update(ctx, first))

		// Then: the stale second writer is rejected, losing no update
		second.Board[4] = entity.SymbolO
		err = roomRepo.Update(ctx, second)
		require.ErrorIs(t, err, ErrVersionConflict)

		stored, err := roomRepo.GetByID(ctx, roomID)
		require.NoError(t, err)
		assert.Equal(t, entity.SymbolX, stored.Board[0])
		assert.Equal(t, entity.EmptyCell, stored.Board[4])
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage)

		// When: updating a room that was never created
		err := roomRepo.Update(ctx, entity.NewRoom(uuid.NewString()))

		// Then: an ErrRoomNotFound error should be returned
		require.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestRoomRepository_All(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage)

	// Given: two known rooms
	firstID, secondID := uuid.NewString(), uuid.NewString()
	_, err := roomRepo.GetOrCreate(ctx, firstID)
	require.NoError(t, err)
	_, err = roomRepo.GetOrCreate(ctx, secondID)
	require.NoError(t, err)

	// When: listing every room
	rooms, err := roomRepo.All(ctx)

	// Then: both come back
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	ids := map[string]bool{}
	for _, room := range rooms {
		ids[room.ID] = true
	}
	assert.True(t, ids[firstID])
	assert.True(t, ids[secondID])
}
