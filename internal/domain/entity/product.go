package entity

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Product represents a sellable product in the catalog. Pricing and stock
// live on ProductBatch; the product row carries identity only.
type Product struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null;index" json:"name"`
	Code      string         `gorm:"size:100;unique;not null" json:"code"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Batches []ProductBatch `gorm:"foreignKey:ProductID" json:"batches,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// ProductBatch is a specific lot of a product with its own expiry, stock
// count and pricing. The batch is the actual sellable unit.
type ProductBatch struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	ProductID    int64          `gorm:"not null;index" json:"productId"`
	BatchNo      string         `gorm:"size:100;not null" json:"batchNo"`
	ExpiryDate   time.Time      `gorm:"type:date;not null" json:"-"`
	MRP          int64          `gorm:"default:0" json:"-"` // Stored in paise
	DP           int64          `gorm:"default:0" json:"-"` // Dealer price, stored in paise
	SP           int64          `gorm:"default:0" json:"sp"` // Loyalty points per unit
	CurrentStock int            `gorm:"default:0" json:"currentStock"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// MarshalJSON converts paise to decimal rupees and renders the expiry as a
// plain date for API responses
func (b ProductBatch) MarshalJSON() ([]byte, error) {
	type Alias ProductBatch
	return json.Marshal(&struct {
		Alias
		ExpiryDate string  `json:"expiryDate"`
		MRP        float64 `json:"mrp"`
		DP         float64 `json:"dp"`
	}{
		Alias:      Alias(b),
		ExpiryDate: b.ExpiryDate.Format("2006-01-02"),
		MRP:        float64(b.MRP) / 100,
		DP:         float64(b.DP) / 100,
	})
}

// TableName returns the table name for the ProductBatch model
func (ProductBatch) TableName() string {
	return "product_batches"
}
