package session

import (
	"context"
	"errors"

	"github.com/resolvelab/coach/models"
)

// ErrNotFound is returned when no interview exists for the given thread ID,
// or when an existing one has idle-expired.
var ErrNotFound = errors.New("interview session not found")

// Store keeps interview state between requests, keyed by remote thread ID.
// Entries idle-expire after the store's TTL; a session that never reaches the
// round limit simply ages out.
//
// Callers are expected to drive one request per session at a time (get,
// mutate, save). Concurrent writers against the same thread ID are not
// supported and may reorder the transcript.
type Store interface {
	Save(ctx context.Context, iv *models.Interview) error
	Get(ctx context.Context, threadID string) (*models.Interview, error)
}

// StoreType selects a Store implementation from configuration.
type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)
