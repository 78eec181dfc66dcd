package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resolvelab/coach/models"
	"github.com/resolvelab/coach/session"
)

const interviewKeyPrefix = "interview:"

// Store persists interviews in redis with a TTL, giving idle expiry for free
// and letting multiple instances share session state.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

// Conn opens and pings a redis client.
func Conn(ctx context.Context, host, port, pass string, db int, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", host, port),
		DialTimeout: timeout,
		Password:    pass,
		DB:          db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed (%s:%s): %w", host, port, err)
	}
	return client, nil
}

func (s *Store) Save(ctx context.Context, iv *models.Interview) error {
	data, err := json.Marshal(iv)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, interviewKeyPrefix+iv.ThreadID, data, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, threadID string) (*models.Interview, error) {
	val, err := s.client.Get(ctx, interviewKeyPrefix+threadID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var iv models.Interview
	if err := json.Unmarshal([]byte(val), &iv); err != nil {
		return nil, err
	}
	// refresh the idle timer on access
	_ = s.client.Expire(ctx, interviewKeyPrefix+threadID, s.ttl).Err()
	return &iv, nil
}
