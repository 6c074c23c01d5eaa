package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog row the price resolver reads. Pricing is stored in
// cents; DiscountPriceCents, when set, is the authoritative selling price.
type Product struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string     `gorm:"column:name;not null"`
	ImageURL           string     `gorm:"column:image_url"`
	PriceCents         int        `gorm:"column:price_cents;not null"`
	DiscountPriceCents *int       `gorm:"column:discount_price_cents"`
	VariantID          *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	WeightGrams        *int       `gorm:"column:weight_grams"`
	LengthCm           *int       `gorm:"column:length_cm"`
	IsActive           bool       `gorm:"column:is_active;not null"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
