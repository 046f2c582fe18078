package repository

import (
	"catalog-system/internal/domain/entity"

	"github.com/google/uuid"
)

type ProductRepository interface {
	Repository[entity.Product, uuid.UUID]
}
