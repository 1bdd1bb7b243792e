package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	KeySession   = "sess" // STRING. sess:{id} with TTL, value is the login time
	KeySeparator = ":"
)

// sessionRepository holds authenticated sessions in redis. A session is just
// a random id with a TTL; the cookie carries no claims.
type sessionRepository struct {
	cl  *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewSessionRepository(cl *redis.Client, ttl time.Duration, log *slog.Logger) *sessionRepository {
	return &sessionRepository{
		cl:  cl,
		ttl: ttl,
		log: log.With(slog.String("item", "SessionRepository")),
	}
}

func (r *sessionRepository) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()

	if _, err := r.cl.Set(ctx, getKey(id), time.Now().Unix(), r.ttl).Result(); err != nil {
		return "", fmt.Errorf("cannot create session: %w", err)
	}

	return id, nil
}

func (r *sessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	_, err := r.cl.Get(ctx, getKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, fmt.Errorf("cannot check session: %w", err)
	}

	return true, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.cl.Del(ctx, getKey(id)).Result(); err != nil {
		return fmt.Errorf("cannot delete session: %w", err)
	}

	return nil
}

func getKey(id string) string {
	return KeySession + KeySeparator + id
}
