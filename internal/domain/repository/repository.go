package repository

import (
	"context"
	"errors"
)

// ErrRecordGone is returned by Save when the record being updated no
// longer exists. Save never re-creates a deleted record.
var ErrRecordGone = errors.New("record no longer exists")

// Repository is the persistence contract shared by every entity.
// FindByKey returns (nil, nil) when no record matches. Save inserts a
// record whose key is unset and otherwise updates the existing row.
type Repository[T any, K comparable] interface {
	FindByKey(ctx context.Context, key K) (*T, error)
	ListAll(ctx context.Context) ([]T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, entity *T) error
}
