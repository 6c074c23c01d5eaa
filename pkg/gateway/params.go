package gateway

// Order is a gateway-side order created before the payment widget opens.
type Order struct {
	ID          string `json:"id"`
	AmountCents int    `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
}

// Prefill carries the contact fields the widget pre-populates.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// CheckoutParams is everything the hosted widget needs to open. The backend
// hands these to the client after creating the gateway order; the widget's
// result comes back as a SuccessPayload or FailurePayload.
type CheckoutParams struct {
	KeyID       string  `json:"key"`
	OrderID     string  `json:"orderId"`
	AmountCents int     `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prefill     Prefill `json:"prefill"`
}

// SuccessPayload is the signed result the widget posts after a capture.
type SuccessPayload struct {
	OrderID   string `json:"gatewayOrderId" validate:"required"`
	PaymentID string `json:"gatewayPaymentId" validate:"required"`
	Signature string `json:"gatewaySignature" validate:"required"`
}

// FailureReason classifies widget failure callbacks.
type FailureReason string

const (
	ReasonCancelled       FailureReason = "cancelled"
	ReasonUnsupportedCard FailureReason = "unsupported_card"
	ReasonUnknown         FailureReason = "unknown"
)

// FailurePayload is the widget's failure callback body.
type FailurePayload struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Classify maps the raw failure payload onto the known reason taxonomy.
func (p FailurePayload) Classify() FailureReason {
	switch p.Reason {
	case "payment_cancelled", "cancelled":
		return ReasonCancelled
	case "international_transaction_not_allowed", "card_network_unsupported":
		return ReasonUnsupportedCard
	}
	switch p.Code {
	case "BAD_REQUEST_ERROR":
		if p.Reason == "" {
			return ReasonCancelled
		}
	}
	return ReasonUnknown
}

// Guidance returns the user-facing message for a failure reason.
func Guidance(reason FailureReason) string {
	switch reason {
	case ReasonCancelled:
		return "Payment was cancelled. Your bag has been kept as it was."
	case ReasonUnsupportedCard:
		return "That card network is not supported. Please try a different card."
	default:
		return "Payment failed. Please try again or use a different payment method."
	}
}
