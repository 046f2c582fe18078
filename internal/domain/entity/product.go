package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	SKU   uuid.UUID       `gorm:"column:sku;type:uuid;primaryKey"`
	Name  string          `gorm:"type:varchar(255);not null"`
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Brand string          `gorm:"type:varchar(255);not null"`
	Views int             `gorm:"not null;default:0"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns the sku; it is never changed afterwards.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.SKU == uuid.Nil {
		p.SKU = uuid.New()
	}
	return nil
}
