package streaks

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
)

const streakKeyPrefix = "streak:"

type redisRepository struct {
	client redis.UniversalClient
}

// NewRedis creates a new Redis-backed streak repository
func NewRedis(client redis.UniversalClient) Repository {
	if client == nil {
		panic("redis client is required")
	}

	return &redisRepository{client: client}
}

func streakKey(userID string) string {
	return streakKeyPrefix + userID
}

// Get returns the current streak for a user
func (r *redisRepository) Get(ctx context.Context, userID string) (int, error) {
	value, err := r.client.Get(ctx, streakKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to get streak")
	}

	count, err := strconv.Atoi(value)
	if err != nil {
		// A corrupt counter reads as zero rather than failing the command
		return 0, nil
	}

	return count, nil
}

// Set stores the streak for a user
func (r *redisRepository) Set(ctx context.Context, userID string, count int) error {
	if err := r.client.Set(ctx, streakKey(userID), strconv.Itoa(count), 0).Err(); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to set streak")
	}

	return nil
}
