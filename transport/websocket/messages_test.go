package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playgrid/tictactoe-rooms/internal/apperror"
	"github.com/playgrid/tictactoe-rooms/internal/repository"
)

func TestClientMessage_Cell(t *testing.T) {
	t.Run("Parses an integer position", func(t *testing.T) {
		// Given: a make_move envelope with an integer position
		var message clientMessage
		require.NoError(t, json.Unmarshal([]byte(`{"type":"make_move","position":4}`), &message))

		// When: extracting the cell
		cell, ok := message.Cell()

		// Then: the index comes through
		require.True(t, ok)
		assert.Equal(t, 4, cell)
	})

	t.Run("Rejects a missing position", func(t *testing.T) {
		var message clientMessage
		require.NoError(t, json.Unmarshal([]byte(`{"type":"make_move"}`), &message))

		_, ok := message.Cell()

		assert.False(t, ok)
	})

	t.Run("Rejects non-integer positions instead of killing the decode", func(t *testing.T) {
		for _, raw := range []string{
			`{"type":"make_move","position":"4"}`,
			`{"type":"make_move","position":4.5}`,
			`{"type":"make_move","position":null}`,
			`{"type":"make_move","position":[4]}`,
		} {
			// Given: an envelope with a malformed position
			var message clientMessage
			require.NoError(t, json.Unmarshal([]byte(raw), &message), raw)

			// Then: the envelope still decodes, only the cell is rejected
			_, ok := message.Cell()
			assert.False(t, ok, raw)
		}
	})
}

func TestRejectionMessage(t *testing.T) {
	t.Run("Maps every rejection to its client-facing string", func(t *testing.T) {
		cases := []struct {
			err  error
			want string
		}{
			{apperror.ErrInvalidCell, msgInvalidPosition},
			{apperror.ErrNotYourTurn, msgNotYourTurn},
			{apperror.ErrGameNotPlaying, msgNotPlaying},
			{apperror.ErrCellOccupied, msgCellTaken},
			{apperror.ErrGameNotFinished, msgNotFinished},
			{repository.ErrRoomNotFound, msgRoomNotFound},
		}

		for _, tc := range cases {
			reason, ok := rejectionMessage(tc.err)
			require.True(t, ok, tc.err)
			assert.Equal(t, tc.want, reason)
		}
	})

	t.Run("Sees through wrapped errors", func(t *testing.T) {
		wrapped := fmt.Errorf("invalid turn: %w", apperror.ErrCellOccupied)

		reason, ok := rejectionMessage(wrapped)

		require.True(t, ok)
		assert.Equal(t, msgCellTaken, reason)
	})

	t.Run("Leaves unexpected failures to the connection handler", func(t *testing.T) {
		_, ok := rejectionMessage(errors.New("redis down"))

		assert.False(t, ok)
	})
}
