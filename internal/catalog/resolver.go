package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/avilesdev/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResolvedItem is the catalog's answer for one product or variant id: the
// authoritative selling price plus the display metadata a bag line snapshots.
type ResolvedItem struct {
	ID          uuid.UUID
	Name        string
	ImageURL    string
	PriceCents  int
	VariantID   *uuid.UUID
	WeightGrams *int
	LengthCm    *int
}

// Resolver answers price lookups against the catalog.
type Resolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*ResolvedItem, error)
}

type resolver struct {
	db *gorm.DB
}

// NewResolver builds a catalog-backed price resolver.
func NewResolver(db *gorm.DB) (Resolver, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &resolver{db: db}, nil
}

// Resolve returns the current authoritative price for the given id. A set
// discount price wins over the list price.
func (r *resolver) Resolve(ctx context.Context, id uuid.UUID) (*ResolvedItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not available")
	}

	return &ResolvedItem{
		ID:          product.ID,
		Name:        product.Name,
		ImageURL:    product.ImageURL,
		PriceCents:  sellingPrice(&product),
		VariantID:   product.VariantID,
		WeightGrams: product.WeightGrams,
		LengthCm:    product.LengthCm,
	}, nil
}

func sellingPrice(product *models.Product) int {
	if product.DiscountPriceCents != nil && *product.DiscountPriceCents > 0 {
		return *product.DiscountPriceCents
	}
	return product.PriceCents
}
