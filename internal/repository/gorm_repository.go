package repository

import (
	"context"
	"errors"
	"reflect"

	domainRepo "catalog-system/internal/domain/repository"

	"gorm.io/gorm"
)

// gormRepository implements the generic repository contract for any model
// whose primary key lives in keyColumn.
type gormRepository[T any, K comparable] struct {
	db        *gorm.DB
	keyColumn string
}

func newGormRepository[T any, K comparable](db *gorm.DB, keyColumn string) *gormRepository[T, K] {
	return &gormRepository[T, K]{db: db, keyColumn: keyColumn}
}

func (r *gormRepository[T, K]) FindByKey(ctx context.Context, key K) (*T, error) {
	var record T
	err := r.db.WithContext(ctx).Where(r.keyColumn+" = ?", key).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormRepository[T, K]) ListAll(ctx context.Context) ([]T, error) {
	records := make([]T, 0)
	if err := r.db.WithContext(ctx).Order(r.keyColumn).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save inserts records with a zero primary key. Any other record is
// updated in place; a missing row yields ErrRecordGone instead of the
// insert fallback of gorm's Save.
func (r *gormRepository[T, K]) Save(ctx context.Context, record *T) error {
	db := r.db.WithContext(ctx)

	isNew, err := r.hasZeroKey(db, record)
	if err != nil {
		return err
	}
	if isNew {
		return db.Create(record).Error
	}

	result := db.Model(record).Select("*").Updates(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrRecordGone
	}
	return nil
}

func (r *gormRepository[T, K]) hasZeroKey(db *gorm.DB, record *T) (bool, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(record); err != nil {
		return false, err
	}

	field := stmt.Schema.PrioritizedPrimaryField
	if field == nil {
		return true, nil
	}
	_, zero := field.ValueOf(db.Statement.Context, reflect.ValueOf(record).Elem())
	return zero, nil
}

func (r *gormRepository[T, K]) Delete(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Delete(record).Error
}
