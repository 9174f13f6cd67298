package model

import (
	"time"

	"github.com/lib/pq"
)

type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         float64        `gorm:"not null" json:"price"`
	DiscountPrice float64        `json:"discount_price,omitempty"`
	CountInStock  int            `gorm:"not null;default:0" json:"count_in_stock"`
	SKU           string         `gorm:"type:varchar(100);uniqueIndex" json:"sku"`
	Category      string         `gorm:"type:varchar(100);index" json:"category"`
	Brand         string         `gorm:"type:varchar(100)" json:"brand"`
	Sizes         pq.StringArray `gorm:"type:text" json:"sizes"`
	Colors        pq.StringArray `gorm:"type:text" json:"colors"`
	Collections   string         `gorm:"type:varchar(100)" json:"collections"`
	Material      string         `gorm:"type:varchar(100)" json:"material"`
	Gender        string         `gorm:"type:varchar(20)" json:"gender"` // Men, Women, Unisex
	ImageURL      string         `json:"image_url"`
	Rating        float64        `gorm:"default:0" json:"rating"`
	NumReviews    int            `gorm:"default:0" json:"num_reviews"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
