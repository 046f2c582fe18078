package repository

import (
	"context"

	"catalog-system/internal/domain/entity"
)

type UserRepository interface {
	Repository[entity.User, uint]
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ListEmails returns the email column of every user, empty ones included.
	ListEmails(ctx context.Context) ([]string, error)
}
