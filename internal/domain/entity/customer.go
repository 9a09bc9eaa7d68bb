package entity

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a loyalty customer on the billing side
type Customer struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Mobile    string         `gorm:"size:20;index;not null" json:"mobile"`
	AscplID   *string        `gorm:"size:50;column:ascpl_id;index" json:"ascplId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
