package converter

import (
	"catalog-system/internal/delivery/dto"
	"catalog-system/internal/domain/entity"
)

// ProductToResponse converts a Product entity to ProductResponse DTO
func ProductToResponse(product *entity.Product) *dto.ProductResponse {
	if product == nil {
		return nil
	}

	return &dto.ProductResponse{
		SKU:   product.SKU,
		Name:  product.Name,
		Price: product.Price.StringFixed(2),
		Brand: product.Brand,
		Views: product.Views,
	}
}

// ProductsToResponses converts a slice of Product entities, keeping order
func ProductsToResponses(products []entity.Product) []dto.ProductResponse {
	responses := make([]dto.ProductResponse, len(products))
	for i := range products {
		responses[i] = *ProductToResponse(&products[i])
	}
	return responses
}
