package playersessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/calmhive/pomodoro-bot-discord/internal/entities"
	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
)

const sessionKeyPrefix = "player:"

type redisRepository struct {
	client redis.UniversalClient
}

// NewRedis creates a new Redis-backed session repository
func NewRedis(client redis.UniversalClient) Repository {
	if client == nil {
		panic("redis client is required")
	}

	return &redisRepository{client: client}
}

func sessionKey(guildID string) string {
	return sessionKeyPrefix + guildID
}

// Set stores a session record, replacing any existing record for the guild
func (r *redisRepository) Set(ctx context.Context, record *entities.SessionRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	if record.GuildID == "" {
		return errors.New("record guild ID cannot be empty")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(record.GuildID), data, 0).Err(); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to set session record")
	}

	return nil
}

// Get retrieves the session record for a guild
func (r *redisRepository) Get(ctx context.Context, guildID string) (*entities.SessionRecord, error) {
	data, err := r.client.Get(ctx, sessionKey(guildID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFoundf("no session record for guild %s", guildID)
		}
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to get session record")
	}

	var record entities.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
	}

	return &record, nil
}

// Delete removes the session record for a guild
func (r *redisRepository) Delete(ctx context.Context, guildID string) error {
	if err := r.client.Del(ctx, sessionKey(guildID)).Err(); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to delete session record")
	}

	return nil
}
