package streaks

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	apperrors "github.com/calmhive/pomodoro-bot-discord/internal/errors"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       Repository
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.repo = NewRedis(s.mockClient)
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()

	// Existing counter
	s.mock.ExpectGet("streak:user-1").SetVal("3")
	count, err := s.repo.Get(ctx, "user-1")
	s.NoError(err)
	s.Equal(3, count)

	// Missing counter reads as zero
	s.mock.ExpectGet("streak:user-2").RedisNil()
	count, err = s.repo.Get(ctx, "user-2")
	s.NoError(err)
	s.Equal(0, count)

	// Corrupt counter reads as zero
	s.mock.ExpectGet("streak:user-3").SetVal("not-a-number")
	count, err = s.repo.Get(ctx, "user-3")
	s.NoError(err)
	s.Equal(0, count)

	// Dependency error
	s.mock.ExpectGet("streak:user-1").SetErr(errors.New("redis error"))
	_, err = s.repo.Get(ctx, "user-1")
	s.Error(err)
	s.True(apperrors.IsUnavailable(err))
}

func (s *RedisRepoTestSuite) TestSet() {
	ctx := context.Background()

	s.mock.ExpectSet("streak:user-1", "4", 0).SetVal("OK")
	s.NoError(s.repo.Set(ctx, "user-1", 4))

	s.mock.ExpectSet("streak:user-1", "0", 0).SetVal("OK")
	s.NoError(s.repo.Set(ctx, "user-1", 0))

	s.mock.ExpectSet("streak:user-1", "1", 0).SetErr(errors.New("redis error"))
	err := s.repo.Set(ctx, "user-1", 1)
	s.Error(err)
	s.True(apperrors.IsUnavailable(err))
}
