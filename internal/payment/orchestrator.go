package payment

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avilesdev/storefront-backend/internal/bag"
	"github.com/avilesdev/storefront-backend/internal/checkout"
	"github.com/avilesdev/storefront-backend/internal/purchase"
	"github.com/avilesdev/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/avilesdev/storefront-backend/pkg/gateway"
	"github.com/avilesdev/storefront-backend/pkg/logger"
	"github.com/avilesdev/storefront-backend/pkg/metrics"
	"github.com/google/uuid"
)

const (
	ModeInquiry = "inquiry"
	ModePayment = "payment"
)

type bagStore interface {
	Summary(ctx context.Context, sessionID string) (bag.Summary, error)
	Clear(ctx context.Context, sessionID string) error
}

type wizardController interface {
	State(ctx context.Context, sessionID string) (*checkout.State, error)
	Close(ctx context.Context, sessionID string) error
}

type gatewayClient interface {
	CreateOrder(ctx context.Context, amountCents int, receipt string) (*gateway.Order, error)
	VerifySignature(payload gateway.SuccessPayload) bool
	KeyID() string
	Currency() string
	MerchantName() string
}

type purchaseRecorder interface {
	Record(ctx context.Context, input purchase.RecordInput) (*models.Purchase, error)
}

// Orchestrator converts a validated checkout form plus the current bag into
// exactly one durable purchase record. Within one run the steps are strictly
// ordered: order creation, widget capture, signature verification,
// persistence, bag clearing. Nothing retries automatically; every failure
// releases the busy lock so the shopper can submit again.
type Orchestrator struct {
	bags      bagStore
	wizard    wizardController
	gateway   gatewayClient
	purchases purchaseRecorder
	lock      BusyLock
	metrics   *metrics.CheckoutMetrics
	logger    *logger.Logger
}

// NewOrchestrator builds the payment orchestrator.
func NewOrchestrator(
	bags bagStore,
	wizard wizardController,
	gw gatewayClient,
	purchases purchaseRecorder,
	lock BusyLock,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (*Orchestrator, error) {
	if bags == nil {
		return nil, fmt.Errorf("bag store required")
	}
	if wizard == nil {
		return nil, fmt.Errorf("wizard required")
	}
	if gw == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if purchases == nil {
		return nil, fmt.Errorf("purchase recorder required")
	}
	if lock == nil {
		return nil, fmt.Errorf("busy lock required")
	}
	return &Orchestrator{
		bags:      bags,
		wizard:    wizard,
		gateway:   gw,
		purchases: purchases,
		lock:      lock,
		metrics:   checkoutMetrics,
		logger:    logg,
	}, nil
}

// SubmitInquiry records the checkout as an intent-to-purchase without
// capturing payment: a synthetic order id and the pending marker go into
// the purchase row, then the bag is cleared and the wizard closed.
func (o *Orchestrator) SubmitInquiry(ctx context.Context, sessionID string) (*models.Purchase, error) {
	started := time.Now()

	form, summary, err := o.reviewSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	acquired, err := o.lock.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeCheckoutBusy, "a checkout attempt is already in progress")
	}
	defer o.releaseLock(ctx, sessionID)

	record, err := o.purchases.Record(ctx, purchase.RecordInput{
		GatewayOrderID:   "INQ-" + uuid.NewString(),
		GatewayPaymentID: models.PaymentPending,
		Form:             *form,
		Items:            summary.Items,
		TotalCents:       summary.SubtotalCents,
	})
	if err != nil {
		o.metrics.IncFailure(ModeInquiry, "persistence")
		return nil, err
	}

	o.finish(ctx, sessionID)
	o.metrics.IncSuccess(ModeInquiry)
	o.metrics.ObserveDuration(ModeInquiry, time.Since(started))
	return record, nil
}

// BeginPayment creates the gateway order for the current bag total and
// returns the parameters the hosted widget opens with. The busy lock stays
// held until ConfirmPayment or CancelPayment ends the run.
func (o *Orchestrator) BeginPayment(ctx context.Context, sessionID string) (*gateway.CheckoutParams, error) {
	form, summary, err := o.reviewSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	acquired, err := o.lock.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeCheckoutBusy, "a checkout attempt is already in progress")
	}

	order, err := o.gateway.CreateOrder(ctx, summary.SubtotalCents, "")
	if err != nil {
		o.releaseLock(ctx, sessionID)
		o.metrics.IncFailure(ModePayment, "order_creation")
		return nil, err
	}

	if o.logger != nil {
		logCtx := o.logger.WithFields(ctx, map[string]any{
			"gateway_order_id": order.ID,
			"amount_cents":     summary.SubtotalCents,
		})
		o.logger.Info(logCtx, "gateway order created")
	}

	return &gateway.CheckoutParams{
		KeyID:       o.gateway.KeyID(),
		OrderID:     order.ID,
		AmountCents: order.AmountCents,
		Currency:    o.gateway.Currency(),
		Name:        o.gateway.MerchantName(),
		Description: describeItems(summary.Items),
		Prefill: gateway.Prefill{
			Name:    form.CustomerName,
			Email:   form.Email,
			Contact: form.Phone,
		},
	}, nil
}

// ConfirmPayment handles the widget's signed success callback: claim the
// in-flight run, verify the signature, persist the purchase, clear the bag,
// close the wizard. The claim consumes the busy lock BeginPayment acquired,
// so a replayed callback cannot record the same payment twice. A failed
// verification keeps the bag so the shopper can retry.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, sessionID string, payload gateway.SuccessPayload) (*models.Purchase, error) {
	started := time.Now()

	form, summary, err := o.reviewSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	claimed, err := o.lock.Claim(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		o.metrics.IncFailure(ModePayment, "duplicate_confirmation")
		return nil, pkgerrors.New(pkgerrors.CodeCheckoutBusy, "this checkout run is already being finalized")
	}

	if !o.gateway.VerifySignature(payload) {
		o.metrics.IncFailure(ModePayment, "verification_failed")
		return nil, pkgerrors.New(pkgerrors.CodeVerificationFailed, "payment verification failed").
			WithDetails(map[string]any{"gatewayOrderId": payload.OrderID})
	}

	record, err := o.purchases.Record(ctx, purchase.RecordInput{
		GatewayOrderID:   payload.OrderID,
		GatewayPaymentID: payload.PaymentID,
		Form:             *form,
		Items:            summary.Items,
		TotalCents:       summary.SubtotalCents,
	})
	if err != nil {
		// Payment was captured but the record did not land. There is no
		// automatic reconciliation; an operator finalizes from this log line.
		if o.logger != nil {
			logCtx := o.logger.WithFields(ctx, map[string]any{
				"gateway_order_id":   payload.OrderID,
				"gateway_payment_id": payload.PaymentID,
			})
			o.logger.Error(logCtx, "verified payment could not be persisted", err)
		}
		o.metrics.IncFailure(ModePayment, "persistence")
		return nil, err
	}

	o.finish(ctx, sessionID)
	o.metrics.IncSuccess(ModePayment)
	o.metrics.ObserveDuration(ModePayment, time.Since(started))
	return record, nil
}

// CancelResult tells the caller what to do after a widget failure.
type CancelResult struct {
	Reason       gateway.FailureReason `json:"reason"`
	Guidance     string                `json:"guidance"`
	WizardClosed bool                  `json:"wizardClosed"`
}

// CancelPayment handles the widget's failure callback. Bag contents and
// form data stay intact in every case; only an explicit cancellation closes
// the wizard.
func (o *Orchestrator) CancelPayment(ctx context.Context, sessionID string, payload gateway.FailurePayload) (*CancelResult, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	o.releaseLock(ctx, sessionID)

	reason := payload.Classify()
	o.metrics.IncFailure(ModePayment, string(reason))

	result := &CancelResult{
		Reason:   reason,
		Guidance: gateway.Guidance(reason),
	}
	if reason == gateway.ReasonCancelled {
		if err := o.wizard.Close(ctx, sessionID); err != nil {
			return nil, err
		}
		result.WizardClosed = true
	}
	return result, nil
}

// reviewSnapshot checks the precondition every submit shares: the wizard is
// on the review step and the bag is non-empty.
func (o *Orchestrator) reviewSnapshot(ctx context.Context, sessionID string) (*checkout.FormData, bag.Summary, error) {
	if sessionID == "" {
		return nil, bag.Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	state, err := o.wizard.State(ctx, sessionID)
	if err != nil {
		return nil, bag.Summary{}, err
	}
	if state.Step != checkout.StepReview {
		return nil, bag.Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "checkout is not on the review step")
	}

	summary, err := o.bags.Summary(ctx, sessionID)
	if err != nil {
		return nil, bag.Summary{}, err
	}
	if len(summary.Items) == 0 {
		return nil, bag.Summary{}, pkgerrors.New(pkgerrors.CodeValidation, "your bag is empty")
	}

	return &state.Form, summary, nil
}

// finish clears the bag and closes the wizard after a recorded purchase.
// Failures here are logged, not surfaced: the purchase row already exists.
func (o *Orchestrator) finish(ctx context.Context, sessionID string) {
	if err := o.bags.Clear(ctx, sessionID); err != nil && o.logger != nil {
		o.logger.Error(ctx, "failed to clear bag after purchase", err)
	}
	if err := o.wizard.Close(ctx, sessionID); err != nil && o.logger != nil {
		o.logger.Error(ctx, "failed to close wizard after purchase", err)
	}
}

func (o *Orchestrator) releaseLock(ctx context.Context, sessionID string) {
	if err := o.lock.Release(ctx, sessionID); err != nil && o.logger != nil {
		o.logger.Error(ctx, "failed to release checkout lock", err)
	}
}

func describeItems(items []bag.Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.Name))
	}
	return truncateDescription(strings.Join(parts, ", "), 255)
}

// truncateDescription caps the gateway order description at max bytes,
// backing the cut off to a rune boundary so item names never end in a
// mangled character.
func truncateDescription(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
