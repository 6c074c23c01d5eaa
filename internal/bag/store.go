package bag

import (
	"context"
	"fmt"

	"github.com/avilesdev/storefront-backend/internal/catalog"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// Cart invariants. All three are soft limits; a forced add bypasses them
// for one operation.
const (
	MaxTotalQuantity   = 10
	MaxDistinctItems   = 5
	MaxPerItemQuantity = 5
)

// LimitKind identifies which cart invariant rejected an add.
type LimitKind string

const (
	LimitTotalQuantity LimitKind = "total_quantity"
	LimitDistinctItems LimitKind = "distinct_items"
	LimitPerItem       LimitKind = "per_item_quantity"
)

// Message returns the user-facing guidance for the limit.
func (k LimitKind) Message() string {
	switch k {
	case LimitTotalQuantity:
		return fmt.Sprintf("Your bag can hold at most %d items in total.", MaxTotalQuantity)
	case LimitDistinctItems:
		return fmt.Sprintf("Your bag can hold at most %d different products.", MaxDistinctItems)
	case LimitPerItem:
		return fmt.Sprintf("You can add at most %d of the same product.", MaxPerItemQuantity)
	default:
		return "Bag limit reached."
	}
}

// AddStatus describes what an Add call did.
type AddStatus string

const (
	StatusAdded         AddStatus = "added"
	StatusIncremented   AddStatus = "incremented"
	StatusLimitExceeded AddStatus = "limit_exceeded"
)

// AddOutcome is the typed result of an Add: either a mutation happened, or
// a specific invariant rejected it and the caller may retry with force.
type AddOutcome struct {
	Status AddStatus `json:"status"`
	Limit  LimitKind `json:"limit,omitempty"`
	Item   *Item     `json:"item,omitempty"`
}

// Exceeded reports whether the add was rejected by a cart invariant.
func (o AddOutcome) Exceeded() bool {
	return o.Status == StatusLimitExceeded
}

// Slot persists the full bag snapshot under a durable per-session key.
type Slot interface {
	Load(ctx context.Context, sessionID string) ([]Item, error)
	Save(ctx context.Context, sessionID string, items []Item) error
	Drop(ctx context.Context, sessionID string) error
}

type priceResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*catalog.ResolvedItem, error)
}

// Store is the only mutation surface for a shopper's bag. Every mutation
// rewrites the persisted snapshot so a returning shopper sees their prior
// bag.
type Store struct {
	slot     Slot
	resolver priceResolver
}

// NewStore builds a bag store backed by the provided persistence slot and
// price resolver.
func NewStore(slot Slot, resolver priceResolver) (*Store, error) {
	if slot == nil {
		return nil, fmt.Errorf("persistence slot required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("price resolver required")
	}
	return &Store{slot: slot, resolver: resolver}, nil
}

// Add resolves the authoritative price for itemID and either appends a new
// line or increments an existing one. Unless force is set, the cart
// invariants gate the mutation; rejections are side-effect free.
func (s *Store) Add(ctx context.Context, sessionID string, itemID uuid.UUID, force bool) (AddOutcome, error) {
	if sessionID == "" {
		return AddOutcome{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	resolved, err := s.resolver.Resolve(ctx, itemID)
	if err != nil {
		return AddOutcome{}, err
	}

	items, err := s.slot.Load(ctx, sessionID)
	if err != nil {
		return AddOutcome{}, err
	}

	existing := indexOf(items, resolved.ID.String())
	totalQty := 0
	for _, item := range items {
		totalQty += item.Quantity
	}

	if !force {
		if kind, ok := violatedLimit(items, existing, totalQty); ok {
			return AddOutcome{Status: StatusLimitExceeded, Limit: kind}, nil
		}
	}

	var outcome AddOutcome
	if existing >= 0 {
		items[existing].Quantity++
		line := items[existing]
		outcome = AddOutcome{Status: StatusIncremented, Item: &line}
	} else {
		line := newItem(resolved)
		items = append(items, line)
		outcome = AddOutcome{Status: StatusAdded, Item: &line}
	}

	if err := s.slot.Save(ctx, sessionID, items); err != nil {
		return AddOutcome{}, err
	}
	return outcome, nil
}

// Remove deletes the line with the given id. Removing an absent id is a
// no-op.
func (s *Store) Remove(ctx context.Context, sessionID, itemID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	items, err := s.slot.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	idx := indexOf(items, itemID)
	if idx < 0 {
		return nil
	}

	items = append(items[:idx], items[idx+1:]...)
	return s.slot.Save(ctx, sessionID, items)
}

// Clear empties the bag; used after a finalized purchase or an explicit
// reset.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.slot.Drop(ctx, sessionID)
}

// Items returns the current bag snapshot.
func (s *Store) Items(ctx context.Context, sessionID string) ([]Item, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.slot.Load(ctx, sessionID)
}

// Summary returns the aggregate view of the current bag.
func (s *Store) Summary(ctx context.Context, sessionID string) (Summary, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(items), nil
}

func violatedLimit(items []Item, existing, totalQty int) (LimitKind, bool) {
	if totalQty+1 > MaxTotalQuantity {
		return LimitTotalQuantity, true
	}
	if existing < 0 && len(items) >= MaxDistinctItems {
		return LimitDistinctItems, true
	}
	if existing >= 0 && items[existing].Quantity >= MaxPerItemQuantity {
		return LimitPerItem, true
	}
	return "", false
}

func newItem(resolved *catalog.ResolvedItem) Item {
	item := Item{
		ID:             resolved.ID.String(),
		Name:           resolved.Name,
		ImageURL:       resolved.ImageURL,
		UnitPriceCents: resolved.PriceCents,
		Quantity:       1,
	}
	if resolved.VariantID != nil {
		variant := resolved.VariantID.String()
		item.VariantID = &variant
	}
	if resolved.WeightGrams != nil {
		weight := *resolved.WeightGrams
		item.WeightGrams = &weight
	}
	if resolved.LengthCm != nil {
		length := *resolved.LengthCm
		item.LengthCm = &length
	}
	return item
}

func indexOf(items []Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
