package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ticketdesk/ticket-bot/internal/domain"
)

type redisCreatorIndex struct {
	client *redis.Client
	key    string
}

// NewRedisCreatorIndex stores records as JSON fields of a single hash keyed by channel id.
func NewRedisCreatorIndex(client *redis.Client, key string) CreatorIndex {
	return &redisCreatorIndex{client: client, key: key}
}

func (r *redisCreatorIndex) Put(ctx context.Context, record *domain.TicketRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return r.client.HSet(ctx, r.key, record.ChannelID, payload).Err()
}

func (r *redisCreatorIndex) Get(ctx context.Context, channelID string) (*domain.TicketRecord, error) {
	payload, err := r.client.HGet(ctx, r.key, channelID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var record domain.TicketRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &record, nil
}

func (r *redisCreatorIndex) Delete(ctx context.Context, channelID string) error {
	return r.client.HDel(ctx, r.key, channelID).Err()
}

// Close is a no-op; the client is owned by persistence.Redis.
func (r *redisCreatorIndex) Close() error { return nil }
