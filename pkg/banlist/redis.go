package banlist

import (
	"context"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "banned_user:"

// RedisBanList mirrors suspended accounts into redis so request gating skips the database.
type RedisBanList struct {
	client *redis.Client
}

func NewRedisBanList(client *redis.Client) *RedisBanList {
	return &RedisBanList{client: client}
}

func Key(userID string) string {
	return keyPrefix + userID
}

func (b *RedisBanList) Ban(ctx context.Context, userID, reason string) error {
	return b.client.Set(ctx, Key(userID), reason, 0).Err()
}

func (b *RedisBanList) Unban(ctx context.Context, userID string) error {
	return b.client.Del(ctx, Key(userID)).Err()
}

func (b *RedisBanList) IsBanned(ctx context.Context, userID string) (bool, error) {
	n, err := b.client.Exists(ctx, Key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
