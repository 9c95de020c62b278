package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

type redisSessionRepository struct {
	rdb *redis.Client
	log *logrus.Logger
}

func NewRedisSessionRepository(rdb *redis.Client, logger *logrus.Logger) (domain.SessionRepository, error) {
	if rdb == nil {
		return nil, errors.New("redis client must be non-nil")
	}
	return &redisSessionRepository{
		rdb: rdb,
		log: logger,
	}, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userSessionsKey(userID string) string {
	return userSessionKeyPrefix + userID
}

func redisFailure(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrBackendUnavailable)
}

func (s *redisSessionRepository) CreateSession(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return fmt.Errorf("session requires id and user id: %w", domain.ErrValidation)
	}
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive: %w", domain.ErrValidation)
	}

	key := sessionKey(session.ID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", session.UserID,
			"email", session.Email,
			"created_at", session.CreatedAt.UTC().Format(time.RFC3339Nano),
			"expires_at", session.ExpiresAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, key, ttl)
		pipe.SAdd(ctx, userSessionsKey(session.UserID), session.ID)
		pipe.Expire(ctx, userSessionsKey(session.UserID), ttl)
		return nil
	})
	if err != nil {
		s.log.Errorf("Repository: CreateSession for user %s: %v", session.UserID, err)
		return redisFailure("create session", err)
	}
	s.log.Debugf("Repository: Session %s stored for user %s (ttl %s)", session.ID, session.UserID, ttl)
	return nil
}

func (s *redisSessionRepository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	val, err := s.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		s.log.Errorf("Repository: GetSession %s: %v", id, err)
		return nil, redisFailure("get session", err)
	}
	if len(val) == 0 || val["user_id"] == "" {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}

	session := &domain.Session{ID: id, UserID: val["user_id"], Email: val["email"]}
	session.CreatedAt, _ = time.Parse(time.RFC3339Nano, val["created_at"])
	session.ExpiresAt, _ = time.Parse(time.RFC3339Nano, val["expires_at"])
	return session, nil
}

func (s *redisSessionRepository) DeleteSession(ctx context.Context, id string) error {
	userID, err := s.rdb.HGet(ctx, sessionKey(id), "user_id").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.log.Errorf("Repository: DeleteSession %s: %v", id, err)
		return redisFailure("delete session", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(id))
		if userID != "" {
			pipe.SRem(ctx, userSessionsKey(userID), id)
		}
		return nil
	})
	if err != nil {
		s.log.Errorf("Repository: DeleteSession %s: %v", id, err)
		return redisFailure("delete session", err)
	}
	return nil
}

func (s *redisSessionRepository) DeleteUserSessions(ctx context.Context, userID string) error {
	ids, err := s.rdb.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		s.log.Errorf("Repository: DeleteUserSessions %s: %v", userID, err)
		return redisFailure("delete user sessions", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Errorf("Repository: DeleteUserSessions %s: %v", userID, err)
		return redisFailure("delete user sessions", err)
	}
	if len(ids) > 0 {
		s.log.Infof("Repository: Ended %d sessions of user %s", len(ids), userID)
	}
	return nil
}
