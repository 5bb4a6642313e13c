package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playgrid/tictactoe-rooms/internal/entity"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrVersionConflict = errors.New("room record version conflict")
)

type RoomRepository interface {
	GetOrCreate(ctx context.Context, id string) (*entity.Room, error)
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	All(ctx context.Context) ([]*entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

// GetOrCreate - loads the room record, creating the default waiting room on the
// first connection to an unknown id.
func (that *dbRoom) GetOrCreate(ctx context.Context, id string) (*entity.Room, error) {
	room, err := that.GetByID(ctx, id)
	if err == nil {
		return room, nil
	}

	if !errors.Is(err, ErrRoomNotFound) {
		return nil, err
	}

	newRoom := entity.NewRoom(id)

	roomJSON, err := json.Marshal(newRoom)
	if err != nil {
		return nil, fmt.Errorf("could not marshal room: %w", err)
	}

	created, err := that.client.SetNX(ctx, roomKey(id), roomJSON, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if created {
		return newRoom, nil
	}

	// lost the create race, someone else wrote the record first
	return that.GetByID(ctx, id)
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by ID: %w", err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal([]byte(response), &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

// Update - persists the room with an optimistic lock on its version. The write
// succeeds only if the stored version still matches room.Version; on success the
// version is bumped both in redis and on the passed record. A concurrent writer
// surfaces as ErrVersionConflict and the caller is expected to re-read and retry.
func (that *dbRoom) Update(ctx context.Context, room *entity.Room) error {
	key := roomKey(room.ID)

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get room by ID: %w", err)
		}

		var stored entity.Room
		if err = json.Unmarshal([]byte(response), &stored); err != nil {
			return fmt.Errorf("failed to unmarshal room: %w", err)
		}

		if stored.Version != room.Version {
			return ErrVersionConflict
		}

		next := *room
		next.Version++

		roomJSON, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("could not marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, roomJSON, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to set room: %w", err)
		}

		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}

	if err != nil {
		return err
	}

	room.Version++

	return nil
}

// All - returns every known room record.
func (that *dbRoom) All(ctx context.Context) ([]*entity.Room, error) {
	var rooms []*entity.Room

	iter := that.client.Scan(ctx, 0, roomKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		response, err := that.client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get room by key: %w", err)
		}

		var room entity.Room
		if err = json.Unmarshal([]byte(response), &room); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room: %w", err)
		}

		rooms = append(rooms, &room)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan rooms: %w", err)
	}

	return rooms, nil
}

func roomKey(id string) string {
	return "room:" + id
}
