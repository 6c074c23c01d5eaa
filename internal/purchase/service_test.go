package purchase

import (
	"context"
	"testing"

	"github.com/avilesdev/storefront-backend/internal/bag"
	"github.com/avilesdev/storefront-backend/internal/checkout"
	"github.com/avilesdev/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPurchaseTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	purchases := `
CREATE TABLE IF NOT EXISTS purchases (
  id TEXT PRIMARY KEY,
  gateway_order_id TEXT NOT NULL,
  gateway_payment_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL,
  company_name TEXT,
  tax_id TEXT,
  company_type TEXT,
  notes TEXT,
  address TEXT NOT NULL,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	index := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_purchases_gateway_order_id ON purchases (gateway_order_id);`
	items := `
CREATE TABLE IF NOT EXISTS purchase_items (
  id TEXT PRIMARY KEY,
  purchase_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image_url TEXT,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  variant_id TEXT,
  weight_grams INTEGER,
  length_cm INTEGER,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(purchases).Error)
	require.NoError(t, db.Exec(index).Error)
	require.NoError(t, db.Exec(items).Error)
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func testForm() checkout.FormData {
	return checkout.FormData{
		CustomerName: "Priya Narang",
		Email:        "priya@example.com",
		Phone:        "9876543210",
		Address:      "14 Hill Road",
		City:         "Mumbai",
		State:        "MH",
		PostalCode:   "400050",
	}
}

func newServiceWithDB(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func TestRecordPersistsPurchaseWithItems(t *testing.T) {
	t.Parallel()

	db := setupPurchaseTestDB(t)
	svc := newServiceWithDB(t, db)

	productID := uuid.New()
	record, err := svc.Record(context.Background(), RecordInput{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_def",
		Form:             testForm(),
		Items: []bag.Item{
			{ID: productID.String(), Name: "Walnut desk", UnitPriceCents: 40000, Quantity: 2},
		},
		TotalCents: 80000,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, record.ID)

	found, err := NewRepository(db).FindByGatewayOrderID(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, "pay_def", found.GatewayPaymentID)
	assert.Equal(t, 80000, found.TotalCents)
	assert.Equal(t, "Priya Narang", found.CustomerName)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Equal(t, 40000, found.Items[0].UnitPriceCents)
}

func TestRecordDefaultsToPendingMarker(t *testing.T) {
	t.Parallel()

	db := setupPurchaseTestDB(t)
	svc := newServiceWithDB(t, db)

	record, err := svc.Record(context.Background(), RecordInput{
		GatewayOrderID: "order_inquiry",
		Form:           testForm(),
		Items: []bag.Item{
			{ID: uuid.NewString(), Name: "Oak chair", UnitPriceCents: 12500, Quantity: 1},
		},
		TotalCents: 12500,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, record.GatewayPaymentID)
}

func TestRecordRejectsDuplicateGatewayOrderID(t *testing.T) {
	t.Parallel()

	db := setupPurchaseTestDB(t)
	svc := newServiceWithDB(t, db)

	input := RecordInput{
		GatewayOrderID:   "order_dup",
		GatewayPaymentID: "pay_one",
		Form:             testForm(),
		Items: []bag.Item{
			{ID: uuid.NewString(), Name: "Bookshelf", UnitPriceCents: 20000, Quantity: 1},
		},
		TotalCents: 20000,
	}

	_, err := svc.Record(context.Background(), input)
	require.NoError(t, err)

	input.GatewayPaymentID = "pay_two"
	_, err = svc.Record(context.Background(), input)
	require.Error(t, err)

	found, err := NewRepository(db).FindByGatewayOrderID(context.Background(), "order_dup")
	require.NoError(t, err)
	assert.Equal(t, "pay_one", found.GatewayPaymentID)
}

func TestRecordRejectsTotalMismatch(t *testing.T) {
	t.Parallel()

	db := setupPurchaseTestDB(t)
	svc := newServiceWithDB(t, db)

	_, err := svc.Record(context.Background(), RecordInput{
		GatewayOrderID: "order_bad",
		Form:           testForm(),
		Items: []bag.Item{
			{ID: uuid.NewString(), Name: "Lamp", UnitPriceCents: 3000, Quantity: 1},
		},
		TotalCents: 9999,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRecordRejectsEmptyItems(t *testing.T) {
	t.Parallel()

	db := setupPurchaseTestDB(t)
	svc := newServiceWithDB(t, db)

	_, err := svc.Record(context.Background(), RecordInput{
		GatewayOrderID: "order_empty",
		Form:           testForm(),
		TotalCents:     0,
	})
	require.Error(t, err)
}
