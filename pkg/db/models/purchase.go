package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentPending marks inquiry-mode purchases that were recorded without a
// captured payment.
const PaymentPending = "PENDING"

// Purchase is the durable record of a completed checkout. Its existence is
// the single source of truth that the transaction finished; the gateway is
// never queried again once the row is written.
type Purchase struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GatewayOrderID   string    `gorm:"column:gateway_order_id;not null;uniqueIndex"`
	GatewayPaymentID string    `gorm:"column:gateway_payment_id;not null"`

	CustomerName string  `gorm:"column:customer_name;not null"`
	Email        string  `gorm:"column:email;not null"`
	Phone        string  `gorm:"column:phone;not null"`
	CompanyName  *string `gorm:"column:company_name"`
	TaxID        *string `gorm:"column:tax_id"`
	CompanyType  *string `gorm:"column:company_type"`
	Notes        *string `gorm:"column:notes"`

	Address    string `gorm:"column:address;not null"`
	City       string `gorm:"column:city;not null"`
	State      string `gorm:"column:state;not null"`
	PostalCode string `gorm:"column:postal_code;not null"`

	TotalCents int            `gorm:"column:total_cents;not null"`
	Items      []PurchaseItem `gorm:"foreignKey:PurchaseID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PurchaseItem snapshots one bag line at the moment the purchase was
// recorded. Unit price is the add-time snapshot, not the live catalog price.
type PurchaseItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID     uuid.UUID  `gorm:"column:purchase_id;type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	Name           string     `gorm:"column:name;not null"`
	ImageURL       string     `gorm:"column:image_url"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	Quantity       int        `gorm:"column:quantity;not null"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	WeightGrams    *int       `gorm:"column:weight_grams"`
	LengthCm       *int       `gorm:"column:length_cm"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
