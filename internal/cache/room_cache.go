package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const RoomListTTL = 2 * time.Minute

// KeyValueStore is the part of RedisCache the room cache uses.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// RoomCache keeps a short-lived copy of a group's room list. Entries are
// keyed per user because row-level policies decide what each user may see.
type RoomCache struct {
	redis KeyValueStore
}

func NewRoomCache(redis KeyValueStore) *RoomCache {
	return &RoomCache{redis: redis}
}

func roomListKey(userID, groupID string) string {
	return fmt.Sprintf("rooms:%s:%s", groupID, userID)
}

func (rc *RoomCache) Get(ctx context.Context, userID, groupID string) ([]models.GroupRoom, bool) {
	if rc == nil || rc.redis == nil {
		return nil, false
	}
	data, err := rc.redis.Get(ctx, roomListKey(userID, groupID))
	if err != nil || data == nil {
		return nil, false
	}
	rooms, err := decodeRooms(data)
	if err != nil {
		return nil, false
	}
	return rooms, true
}

func (rc *RoomCache) Set(ctx context.Context, userID, groupID string, rooms []models.GroupRoom) error {
	if rc == nil || rc.redis == nil {
		return nil
	}
	data, err := encodeRooms(rooms)
	if err != nil {
		return err
	}
	return rc.redis.Set(ctx, roomListKey(userID, groupID), data, RoomListTTL)
}

// Invalidate drops userID's cached room list for groupID.
func (rc *RoomCache) Invalidate(ctx context.Context, userID, groupID string) error {
	if rc == nil || rc.redis == nil {
		return nil
	}
	return rc.redis.Delete(ctx, roomListKey(userID, groupID))
}

// InvalidateGroup drops every user's cached room list for groupID.
func (rc *RoomCache) InvalidateGroup(ctx context.Context, groupID string) error {
	if rc == nil || rc.redis == nil {
		return nil
	}
	return rc.redis.DeletePattern(ctx, fmt.Sprintf("rooms:%s:*", groupID))
}

func encodeRooms(rooms []models.GroupRoom) ([]byte, error) {
	if rooms == nil {
		rooms = []models.GroupRoom{}
	}
	return msgpack.Marshal(rooms)
}

func decodeRooms(data []byte) ([]models.GroupRoom, error) {
	var rooms []models.GroupRoom
	if err := msgpack.Unmarshal(data, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}
