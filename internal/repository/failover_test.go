package repository

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"tallergo/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) GetSession(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockSessionRepo) SetSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepo) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockSessionRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverSessionRepository(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary := new(mockSessionRepo)
		fallback := new(mockSessionRepo)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		session := &models.Session{Token: "tok", UserID: 1}
		primary.On("GetSession", ctx, "tok").Return(session, nil).Once()

		got, err := repo.GetSession(ctx, "tok")
		assert.NoError(t, err)
		assert.Equal(t, session, got)
		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
	})

	t.Run("FallsBackOnError", func(t *testing.T) {
		primary := new(mockSessionRepo)
		fallback := new(mockSessionRepo)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		session := &models.Session{Token: "tok", UserID: 2}
		primary.On("GetSession", ctx, "tok").Return(nil, errors.New("redis down")).Once()
		fallback.On("GetSession", ctx, "tok").Return(session, nil).Once()

		got, err := repo.GetSession(ctx, "tok")
		assert.NoError(t, err)
		assert.Equal(t, session, got)

		// while down, primary is not retried on writes
		fallback.On("SetSession", ctx, session).Return(nil).Once()
		assert.NoError(t, repo.SetSession(ctx, session))

		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ConcurrentFailures", func(t *testing.T) {
		primary := new(mockSessionRepo)
		fallback := new(mockSessionRepo)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		session := &models.Session{Token: "tok", UserID: 3}
		primary.On("GetSession", ctx, "tok").Return(nil, errors.New("redis down"))
		fallback.On("GetSession", ctx, "tok").Return(session, nil)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := repo.GetSession(ctx, "tok")
				assert.NoError(t, err)
				assert.Equal(t, session, got)
			}()
		}
		wg.Wait()
	})

	t.Run("RateLimitFailover", func(t *testing.T) {
		primary := new(mockSessionRepo)
		fallback := new(mockSessionRepo)
		repo := NewFailoverSessionRepository(primary, fallback, &logger)

		primary.On("CheckRateLimit", ctx, "ip", 5, time.Minute).Return(false, errors.New("redis down")).Once()
		fallback.On("CheckRateLimit", ctx, "ip", 5, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "ip", 5, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}
