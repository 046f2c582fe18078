package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// Price is a pointer so that a missing field fails "required" instead of
// decoding to zero.
type CreateProductRequest struct {
	Name  string           `json:"name" validate:"required,max=255"`
	Price *decimal.Decimal `json:"price" validate:"required,price"`
	Brand string           `json:"brand" validate:"required,max=255"`
}

// UpdateProductRequest replaces every editable field; partial updates are
// not accepted.
type UpdateProductRequest struct {
	Name  string           `json:"name" validate:"required,max=255"`
	Price *decimal.Decimal `json:"price" validate:"required,price"`
	Brand string           `json:"brand" validate:"required,max=255"`
}

// Response DTOs

type ProductResponse struct {
	SKU   uuid.UUID `json:"sku"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
	Brand string    `json:"brand"`
	Views int       `json:"views"`
}
