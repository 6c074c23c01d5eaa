package purchase

import (
	"context"
	"fmt"
	"strings"

	"github.com/avilesdev/storefront-backend/internal/bag"
	"github.com/avilesdev/storefront-backend/internal/checkout"
	"github.com/avilesdev/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RecordInput is everything needed to write one durable purchase row.
type RecordInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Form             checkout.FormData
	Items            []bag.Item
	TotalCents       int
}

// Service records finalized purchases and inquiries.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.Purchase, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the purchase service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Record validates the snapshot and writes the purchase and its items
// atomically. A missing payment id is recorded as the pending marker.
func (s *service) Record(ctx context.Context, input RecordInput) (*models.Purchase, error) {
	if strings.TrimSpace(input.GatewayOrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase must contain at least one item")
	}

	computed := 0
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		computed += item.LineTotalCents()
	}
	if computed != input.TotalCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase total mismatch")
	}

	paymentID := strings.TrimSpace(input.GatewayPaymentID)
	if paymentID == "" {
		paymentID = models.PaymentPending
	}

	record := &models.Purchase{
		GatewayOrderID:   input.GatewayOrderID,
		GatewayPaymentID: paymentID,
		CustomerName:     input.Form.CustomerName,
		Email:            input.Form.Email,
		Phone:            input.Form.Phone,
		CompanyName:      input.Form.CompanyName,
		TaxID:            input.Form.TaxID,
		CompanyType:      input.Form.CompanyType,
		Notes:            input.Form.Notes,
		Address:          input.Form.Address,
		City:             input.Form.City,
		State:            input.Form.State,
		PostalCode:       input.Form.PostalCode,
		TotalCents:       input.TotalCents,
	}

	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		created, err := txRepo.Create(ctx, record)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].PurchaseID = created.ID
		}
		return txRepo.CreateItems(ctx, items)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist purchase")
	}

	record.Items = items
	return record, nil
}

func buildItems(lines []bag.Item) ([]models.PurchaseItem, error) {
	items := make([]models.PurchaseItem, 0, len(lines))
	for _, line := range lines {
		productID, err := uuid.Parse(line.ID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id in purchase items")
		}
		item := models.PurchaseItem{
			ProductID:      productID,
			Name:           line.Name,
			ImageURL:       line.ImageURL,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			WeightGrams:    line.WeightGrams,
			LengthCm:       line.LengthCm,
		}
		if line.VariantID != nil {
			variantID, err := uuid.Parse(*line.VariantID)
			if err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid variant id in purchase items")
			}
			item.VariantID = &variantID
		}
		items = append(items, item)
	}
	return items, nil
}
