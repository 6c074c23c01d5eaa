package bag

import (
	"context"
	"testing"

	"github.com/avilesdev/storefront-backend/internal/catalog"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

type memorySlot struct {
	bags  map[string][]Item
	saves int
}

func newMemorySlot() *memorySlot {
	return &memorySlot{bags: map[string][]Item{}}
}

func (m *memorySlot) Load(ctx context.Context, sessionID string) ([]Item, error) {
	snapshot := make([]Item, len(m.bags[sessionID]))
	copy(snapshot, m.bags[sessionID])
	return snapshot, nil
}

func (m *memorySlot) Save(ctx context.Context, sessionID string, items []Item) error {
	m.saves++
	m.bags[sessionID] = items
	return nil
}

func (m *memorySlot) Drop(ctx context.Context, sessionID string) error {
	delete(m.bags, sessionID)
	return nil
}

type stubResolver struct {
	prices map[uuid.UUID]int
}

func (s *stubResolver) Resolve(ctx context.Context, id uuid.UUID) (*catalog.ResolvedItem, error) {
	price, ok := s.prices[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &catalog.ResolvedItem{ID: id, Name: "product", PriceCents: price}, nil
}

func newTestStore(t *testing.T, prices map[uuid.UUID]int) (*Store, *memorySlot) {
	t.Helper()
	slot := newMemorySlot()
	store, err := NewStore(slot, &stubResolver{prices: prices})
	if err != nil {
		t.Fatalf("unexpected error building store: %v", err)
	}
	return store, slot
}

func TestAddSameItemIncrementsQuantity(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	store, _ := newTestStore(t, map[uuid.UUID]int{id: 500})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		outcome, err := store.Add(ctx, "shopper-1", id, false)
		if err != nil {
			t.Fatalf("unexpected error on add %d: %v", i, err)
		}
		if outcome.Exceeded() {
			t.Fatalf("unexpected limit on add %d", i)
		}
	}

	items, err := store.Items(ctx, "shopper-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
	if items[0].UnitPriceCents != 500 {
		t.Fatalf("expected snapshotted price 500, got %d", items[0].UnitPriceCents)
	}
}

func TestAddRejectsSixthDistinctProduct(t *testing.T) {
	t.Parallel()

	prices := map[uuid.UUID]int{}
	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = uuid.New()
		prices[ids[i]] = 100 * (i + 1)
	}
	store, slot := newTestStore(t, prices)
	ctx := context.Background()

	for _, id := range ids[:5] {
		outcome, err := store.Add(ctx, "shopper-1", id, false)
		if err != nil || outcome.Exceeded() {
			t.Fatalf("seed add failed: %v %+v", err, outcome)
		}
	}
	savesBefore := slot.saves

	outcome, err := store.Add(ctx, "shopper-1", ids[5], false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Exceeded() || outcome.Limit != LimitDistinctItems {
		t.Fatalf("expected distinct-items limit, got %+v", outcome)
	}
	if slot.saves != savesBefore {
		t.Fatal("rejected add must not persist")
	}
	if len(slot.bags["shopper-1"]) != 5 {
		t.Fatalf("expected bag unchanged at 5 lines, got %d", len(slot.bags["shopper-1"]))
	}
}

func TestAddEnforcesPerItemCap(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	store, _ := newTestStore(t, map[uuid.UUID]int{id: 250})
	ctx := context.Background()

	for i := 0; i < MaxPerItemQuantity; i++ {
		if outcome, err := store.Add(ctx, "shopper-1", id, false); err != nil || outcome.Exceeded() {
			t.Fatalf("seed add %d failed: %v %+v", i, err, outcome)
		}
	}

	outcome, err := store.Add(ctx, "shopper-1", id, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Exceeded() || outcome.Limit != LimitPerItem {
		t.Fatalf("expected per-item limit, got %+v", outcome)
	}
}

func TestAddEnforcesGlobalCapAndForceBypasses(t *testing.T) {
	t.Parallel()

	first, second := uuid.New(), uuid.New()
	store, _ := newTestStore(t, map[uuid.UUID]int{first: 100, second: 200})
	ctx := context.Background()

	for i := 0; i < MaxPerItemQuantity; i++ {
		if outcome, err := store.Add(ctx, "shopper-1", first, false); err != nil || outcome.Exceeded() {
			t.Fatalf("seed add failed: %v %+v", err, outcome)
		}
		if outcome, err := store.Add(ctx, "shopper-1", second, false); err != nil || outcome.Exceeded() {
			t.Fatalf("seed add failed: %v %+v", err, outcome)
		}
	}

	outcome, err := store.Add(ctx, "shopper-1", first, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Exceeded() || outcome.Limit != LimitTotalQuantity {
		t.Fatalf("expected total-quantity limit at the global cap, got %+v", outcome)
	}

	forced, err := store.Add(ctx, "shopper-1", first, true)
	if err != nil {
		t.Fatalf("unexpected error on forced add: %v", err)
	}
	if forced.Exceeded() {
		t.Fatalf("forced add must bypass the cap, got %+v", forced)
	}

	summary, err := store.Summary(ctx, "shopper-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalQuantity != MaxTotalQuantity+1 {
		t.Fatalf("expected total %d after forced add, got %d", MaxTotalQuantity+1, summary.TotalQuantity)
	}
}

func TestLimitsNeverExceededWithoutForce(t *testing.T) {
	t.Parallel()

	prices := map[uuid.UUID]int{}
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
		prices[ids[i]] = 100
	}
	store, _ := newTestStore(t, prices)
	ctx := context.Background()

	// Hammer adds in a fixed pattern; invariants must hold at every step.
	for round := 0; round < 4; round++ {
		for _, id := range ids {
			if _, err := store.Add(ctx, "shopper-1", id, false); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			summary, err := store.Summary(ctx, "shopper-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if summary.TotalQuantity > MaxTotalQuantity {
				t.Fatalf("total quantity invariant broken: %d", summary.TotalQuantity)
			}
			if summary.DistinctItems > MaxDistinctItems {
				t.Fatalf("distinct items invariant broken: %d", summary.DistinctItems)
			}
			for _, item := range summary.Items {
				if item.Quantity > MaxPerItemQuantity {
					t.Fatalf("per-item invariant broken: %d", item.Quantity)
				}
			}
		}
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	store, slot := newTestStore(t, map[uuid.UUID]int{id: 300})
	ctx := context.Background()

	if _, err := store.Add(ctx, "shopper-1", id, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Remove(ctx, "shopper-1", uuid.NewString()); err != nil {
		t.Fatalf("removing an absent id must be a no-op, got %v", err)
	}
	if len(slot.bags["shopper-1"]) != 1 {
		t.Fatal("bag changed on absent remove")
	}

	if err := store.Remove(ctx, "shopper-1", id.String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slot.bags["shopper-1"]) != 0 {
		t.Fatal("expected bag to be empty after remove")
	}

	if err := store.Remove(ctx, "shopper-1", id.String()); err != nil {
		t.Fatalf("second remove must be a no-op, got %v", err)
	}
}

func TestClearEmptiesBag(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	store, slot := newTestStore(t, map[uuid.UUID]int{id: 150})
	ctx := context.Background()

	if _, err := store.Add(ctx, "shopper-1", id, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Clear(ctx, "shopper-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := slot.bags["shopper-1"]; ok {
		t.Fatal("expected slot to be dropped")
	}
}

func TestSummaryComputesSubtotal(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	store, _ := newTestStore(t, map[uuid.UUID]int{id: 500})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Add(ctx, "shopper-1", id, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	summary, err := store.Summary(ctx, "shopper-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.SubtotalCents != 1500 {
		t.Fatalf("expected subtotal 1500 cents, got %d", summary.SubtotalCents)
	}
	if summary.Subtotal.String() != "15" {
		t.Fatalf("expected decimal subtotal 15, got %s", summary.Subtotal.String())
	}
}
