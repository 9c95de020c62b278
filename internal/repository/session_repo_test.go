package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRepo(t *testing.T) (domain.SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })

	repo, err := NewRedisSessionRepository(rdb, quietLogger())
	require.NoError(t, err)
	return repo, srv
}

func testSession(id, userID string) *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{ID: id, UserID: userID, Email: userID + "@shop.io", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
}

func TestSessionRoundTrip(t *testing.T) {
	repo, srv := newSessionRepo(t)
	ctx := context.Background()
	s := testSession("s1", "u1")

	require.NoError(t, repo.CreateSession(ctx, s, time.Hour))
	assert.True(t, srv.Exists("session:s1"))
	assert.Equal(t, time.Hour, srv.TTL("session:s1"))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, s.Email, got.Email)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	_, err = repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	members, _ := srv.SMembers("user_sessions:u1")
	assert.Empty(t, members)
}

func TestSessionExpires(t *testing.T) {
	repo, srv := newSessionRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateSession(ctx, testSession("s1", "u1"), time.Minute))

	srv.FastForward(2 * time.Minute)
	_, err := repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUserSessions(t *testing.T) {
	repo, _ := newSessionRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateSession(ctx, testSession("s1", "u1"), time.Hour))
	require.NoError(t, repo.CreateSession(ctx, testSession("s2", "u1"), time.Hour))
	require.NoError(t, repo.CreateSession(ctx, testSession("s3", "u2"), time.Hour))

	require.NoError(t, repo.DeleteUserSessions(ctx, "u1"))

	for _, id := range []string{"s1", "s2"} {
		_, err := repo.GetSession(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
	_, err := repo.GetSession(ctx, "s3")
	assert.NoError(t, err)

	assert.NoError(t, repo.DeleteUserSessions(ctx, "nobody"))
}

func TestCreateSessionValidation(t *testing.T) {
	repo, _ := newSessionRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.CreateSession(ctx, &domain.Session{ID: "s"}, time.Hour), domain.ErrValidation)
	assert.ErrorIs(t, repo.CreateSession(ctx, testSession("s", "u"), 0), domain.ErrValidation)
}

func TestSessionStoreUnavailable(t *testing.T) {
	repo, srv := newSessionRepo(t)
	srv.Close()

	_, err := repo.GetSession(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}
