package store

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/codepath/internal/learner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveProgress(t *testing.T, s *Store, p *learner.Progress) {
	t.Helper()
	_, err := s.Progress().Complete(context.Background(), p, nil)
	require.NoError(t, err)
}

func TestProgressCompleteAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Progress()
	require.NoError(t, s.Users().Create(ctx, &learner.User{ID: "u1", CreatedAt: now}))

	_, err := repo.Get(ctx, "u1", "l1")
	assert.True(t, errors.Is(err, ErrNotFound))

	p := learner.NewUnlocked("u1", "l1")
	p.Complete(80, now)
	next := learner.NewUnlocked("u1", "l2")
	unlocked, err := repo.Complete(ctx, &p, &next)
	require.NoError(t, err)
	assert.True(t, unlocked)

	got, err := repo.Get(ctx, "u1", "l1")
	require.NoError(t, err)
	assert.Equal(t, learner.StatusCompleted, got.Status)
	assert.Equal(t, 80, got.BestScore)
	assert.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.LastAttemptAt)
	assert.True(t, now.Equal(*got.LastAttemptAt))

	got, err = repo.Get(ctx, "u1", "l2")
	require.NoError(t, err)
	assert.Equal(t, learner.StatusUnlocked, got.Status)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestProgressCompleteKeepsExistingNext(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Progress()
	require.NoError(t, s.Users().Create(ctx, &learner.User{ID: "u1", CreatedAt: now}))

	done := learner.NewUnlocked("u1", "l2")
	done.Complete(100, now)
	saveProgress(t, s, &done)

	p := learner.NewUnlocked("u1", "l1")
	p.Complete(60, now)
	next := learner.NewUnlocked("u1", "l2")
	unlocked, err := repo.Complete(ctx, &p, &next)
	require.NoError(t, err)
	assert.False(t, unlocked)

	got, err := repo.Get(ctx, "u1", "l2")
	require.NoError(t, err)
	assert.Equal(t, learner.StatusCompleted, got.Status, "existing record must not be overwritten")
	assert.Equal(t, 100, got.BestScore)
}

func TestProgressCompleteRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Progress()
	require.NoError(t, s.Users().Create(ctx, &learner.User{ID: "u1", CreatedAt: now}))

	p := learner.NewUnlocked("u1", "l1")
	p.Complete(80, now)
	// The unlock row references a user that does not exist, so the
	// foreign key rejects it after the completion row was written.
	next := learner.NewUnlocked("ghost", "l2")
	_, err := repo.Complete(ctx, &p, &next)
	require.Error(t, err)

	_, err = repo.Get(ctx, "u1", "l1")
	assert.True(t, errors.Is(err, ErrNotFound), "completion must roll back with the failed unlock")

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
