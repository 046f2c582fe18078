package repository

import (
	"context"
	"errors"

	"catalog-system/internal/domain/entity"
	domainRepo "catalog-system/internal/domain/repository"

	"gorm.io/gorm"
)

type userRepository struct {
	*gormRepository[entity.User, uint]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{
		gormRepository: newGormRepository[entity.User, uint](db, "id"),
		db:             db,
	}
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) ListEmails(ctx context.Context) ([]string, error) {
	emails := make([]string, 0)
	err := r.db.WithContext(ctx).Model(&entity.User{}).Order("id").Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}
