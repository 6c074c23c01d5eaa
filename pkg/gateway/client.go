package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avilesdev/storefront-backend/pkg/config"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/avilesdev/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

var (
	errKeyIDRequired     = errors.New("gateway key id is required")
	errKeySecretRequired = errors.New("gateway key secret is required")
	errBaseURLRequired   = errors.New("gateway base url is required")
	errLoggerRequired    = errors.New("gateway logger is required")
)

// Client wraps the payment gateway's server-side API with centralized auth,
// logging, and error mapping. Order creation happens here; the payment
// instrument itself is collected by the gateway's hosted widget, which calls
// back with a payload this client can verify via VerifySignature.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	keyID        string
	keySecret    string
	merchantName string
	currency     string
	logger       *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	c := &Client{
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:      baseURL,
		keyID:        keyID,
		keySecret:    keySecret,
		merchantName: cfg.MerchantName,
		currency:     strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		logger:       logg,
	}

	logg.Info(ctx, "payment gateway client initialized")
	return c, nil
}

// KeyID returns the public gateway key the widget is opened with.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// MerchantName reports the display name shown in the widget.
func (c *Client) MerchantName() string {
	if c == nil {
		return ""
	}
	return c.merchantName
}

// NewReceipt returns a unique receipt reference for gateway orders.
func (c *Client) NewReceipt(prefix string) string {
	ref := strings.TrimSpace(prefix)
	if ref == "" {
		ref = "sf"
	}
	return fmt.Sprintf("%s-%s", ref, uuid.NewString())
}

type createOrderRequest struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type apiErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder registers an order with the gateway and returns its id. The
// returned id correlates the eventual widget payment with this checkout run.
func (c *Client) CreateOrder(ctx context.Context, amountCents int, receipt string) (*Order, error) {
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}
	if strings.TrimSpace(receipt) == "" {
		receipt = c.NewReceipt("order")
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   amountCents,
		"currency": c.currency,
		"receipt":  receipt,
	})

	body, err := json.Marshal(createOrderRequest{
		Amount:   amountCents,
		Currency: c.currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order request")
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway create order failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read gateway response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.mapAPIError(ctx, resp.StatusCode, raw)
	}

	var payload createOrderResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}
	if payload.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway returned an empty order id")
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"order_id": payload.ID,
		"status":   payload.Status,
	})

	return &Order{
		ID:          payload.ID,
		AmountCents: payload.Amount,
		Currency:    payload.Currency,
		Receipt:     receipt,
	}, nil
}

// VerifySignature reports whether the widget success payload was genuinely
// signed by the gateway with our key secret.
func (c *Client) VerifySignature(payload SuccessPayload) bool {
	if c == nil {
		return false
	}
	return VerifySignedPayload(c.keySecret, payload)
}

func (c *Client) mapAPIError(ctx context.Context, status int, raw []byte) error {
	var body apiErrorResponse
	_ = json.Unmarshal(raw, &body)

	description := strings.TrimSpace(body.Error.Description)
	if description == "" {
		description = fmt.Sprintf("gateway returned status %d", status)
	}

	c.log(ctx, "error", "create_order", map[string]any{
		"status":     status,
		"error_code": body.Error.Code,
		"error":      description,
	})

	code := pkgerrors.CodeDependency
	switch {
	case status == http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case status >= 400 && status < 500:
		code = pkgerrors.CodeValidation
	}
	return pkgerrors.New(code, description).WithDetails(map[string]any{"gateway_code": body.Error.Code})
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("gateway %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("gateway %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "secret", "signature", "email", "phone", "contact"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
