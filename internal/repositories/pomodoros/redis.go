package pomodoros

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/calmhive/pomodoro-bot-discord/internal/entities"
	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
)

const (
	pomodoroKeyPrefix = "pomodoro:"
	scanBatchSize     = 100
)

type redisRepository struct {
	client redis.UniversalClient
}

// NewRedis creates a new Redis-backed pomodoro record repository
func NewRedis(client redis.UniversalClient) Repository {
	if client == nil {
		panic("redis client is required")
	}

	return &redisRepository{client: client}
}

// ListKeys enumerates every pomodoro record key using SCAN so the
// sweep never blocks the store the way KEYS would
func (r *redisRepository) ListKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)

	for {
		batch, next, err := r.client.Scan(ctx, cursor, pomodoroKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to scan pomodoro keys")
		}

		keys = append(keys, batch...)

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// Get retrieves and decodes one record by its full key
func (r *redisRepository) Get(ctx context.Context, key string) (*entities.PomodoroRecord, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFoundf("pomodoro record not found: %s", key)
		}
		return nil, apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to get pomodoro record")
	}

	var record entities.PomodoroRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pomodoro record %s: %w", key, err)
	}

	return &record, nil
}

// Put stores a record under its full key
func (r *redisRepository) Put(ctx context.Context, key string, record *entities.PomodoroRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal pomodoro record: %w", err)
	}

	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return apperrors.WrapWithCode(err, apperrors.CodeUnavailable, "failed to put pomodoro record")
	}

	return nil
}
