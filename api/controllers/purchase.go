package controllers

import (
	"net/http"

	"github.com/avilesdev/storefront-backend/api/responses"
	"github.com/avilesdev/storefront-backend/api/validators"
	"github.com/avilesdev/storefront-backend/internal/bag"
	"github.com/avilesdev/storefront-backend/internal/checkout"
	"github.com/avilesdev/storefront-backend/internal/purchase"
	"github.com/avilesdev/storefront-backend/pkg/logger"
)

type recordPurchaseRequest struct {
	GatewayOrderID   string  `json:"gatewayOrderId" validate:"required"`
	GatewayPaymentID string  `json:"gatewayPaymentId"`
	CustomerName     string  `json:"customerName" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	Phone            string  `json:"phone" validate:"required"`
	CompanyName      *string `json:"companyName,omitempty"`
	TaxID            *string `json:"taxId,omitempty"`
	CompanyType      *string `json:"companyType,omitempty"`
	Address          string  `json:"address" validate:"required"`
	City             string  `json:"city" validate:"required"`
	State            string  `json:"state" validate:"required"`
	PostalCode       string  `json:"postalCode" validate:"required"`
	Notes            *string `json:"notes,omitempty"`

	Items      []purchaseItemPayload `json:"items" validate:"required,min=1,dive"`
	TotalCents int                   `json:"totalCents" validate:"required"`
}

type purchaseItemPayload struct {
	ID             string  `json:"id" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	ImageURL       string  `json:"imageUrl"`
	UnitPriceCents int     `json:"price" validate:"required"`
	Quantity       int     `json:"quantity" validate:"required,min=1"`
	VariantID      *string `json:"variantId,omitempty"`
	WeightGrams    *int    `json:"weight,omitempty"`
	LengthCm       *int    `json:"length,omitempty"`
}

// PurchaseCreate persists a finalized order directly from the submitted
// snapshot. The service recomputes the total from the lines and rejects a
// mismatch, so a tampered client total never lands.
func PurchaseCreate(svc purchase.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload recordPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Record(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"purchaseId":       record.ID,
			"gatewayOrderId":   record.GatewayOrderID,
			"gatewayPaymentId": record.GatewayPaymentID,
			"totalCents":       record.TotalCents,
		})
	}
}

func (p recordPurchaseRequest) toInput() purchase.RecordInput {
	items := make([]bag.Item, len(p.Items))
	for i, line := range p.Items {
		items[i] = bag.Item{
			ID:             line.ID,
			Name:           line.Name,
			ImageURL:       line.ImageURL,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			VariantID:      line.VariantID,
			WeightGrams:    line.WeightGrams,
			LengthCm:       line.LengthCm,
		}
	}

	return purchase.RecordInput{
		GatewayOrderID:   p.GatewayOrderID,
		GatewayPaymentID: p.GatewayPaymentID,
		Form: checkout.FormData{
			CustomerName: p.CustomerName,
			Email:        p.Email,
			Phone:        p.Phone,
			CompanyName:  p.CompanyName,
			TaxID:        p.TaxID,
			CompanyType:  p.CompanyType,
			Address:      p.Address,
			City:         p.City,
			State:        p.State,
			PostalCode:   p.PostalCode,
			Notes:        p.Notes,
		},
		Items:      items,
		TotalCents: p.TotalCents,
	}
}
