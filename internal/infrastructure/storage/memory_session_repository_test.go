package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"spacesight-bot/internal/domain/entity"
)

func TestMemorySessionRepository_GetCreates(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	s, err := repo.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), s.ChatID)
	require.Equal(t, entity.StateIdle, s.Workflow())
	require.Equal(t, 1, repo.Len())
}

func TestMemorySessionRepository_GetReturnsSnapshot(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	s, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	s.TeamName = "local change"

	again, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, entity.DefaultTeamName, again.TeamName)
}

func TestMemorySessionRepository_Update(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	s, err := repo.Update(ctx, 1, func(s *entity.Session) error {
		s.ZoomIn()
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, entity.ZoomDefault.In(), s.Zoom)

	boom := errors.New("boom")
	_, err = repo.Update(ctx, 1, func(s *entity.Session) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestMemorySessionRepository_ConcurrentUpdates(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Update(ctx, 7, func(s *entity.Session) error {
				s.ToggleOverlays()
				return nil
			})
		}()
	}
	wg.Wait()

	s, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	require.True(t, s.ShowOverlays)
}

func TestMemorySessionRepository_CancelledContext(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Get(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}
