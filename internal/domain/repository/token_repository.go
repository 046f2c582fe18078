package repository

import (
	"context"
	"time"
)

// TokenRepository keeps the ids of issued tokens so they can be revoked.
type TokenRepository interface {
	Store(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}
