package bag

import (
	"github.com/shopspring/decimal"
)

// Item is one line in a shopper's bag. UnitPriceCents is snapshotted when
// the line is first added and is never re-resolved on later quantity
// changes; the shopper pays what the bag showed.
type Item struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	ImageURL       string  `json:"imageUrl"`
	UnitPriceCents int     `json:"price"`
	Quantity       int     `json:"quantity"`
	VariantID      *string `json:"variantId,omitempty"`
	WeightGrams    *int    `json:"weight,omitempty"`
	LengthCm       *int    `json:"length,omitempty"`
}

// LineTotalCents returns quantity times the snapshotted unit price.
func (i Item) LineTotalCents() int {
	return i.UnitPriceCents * i.Quantity
}

// Summary aggregates a bag snapshot for display and checkout.
type Summary struct {
	Items         []Item          `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	DistinctItems int             `json:"distinctItems"`
	SubtotalCents int             `json:"subtotalCents"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// Summarize computes the aggregate view of the given items.
func Summarize(items []Item) Summary {
	summary := Summary{Items: items}
	for _, item := range items {
		summary.TotalQuantity += item.Quantity
		summary.SubtotalCents += item.LineTotalCents()
	}
	summary.DistinctItems = len(items)
	summary.Subtotal = decimal.NewFromInt(int64(summary.SubtotalCents)).Div(decimal.NewFromInt(100))
	return summary
}
