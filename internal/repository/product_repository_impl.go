package repository

import (
	"catalog-system/internal/domain/entity"
	domainRepo "catalog-system/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	*gormRepository[entity.Product, uuid.UUID]
}

func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{
		gormRepository: newGormRepository[entity.Product, uuid.UUID](db, "sku"),
	}
}
