package gateway

import "testing"

func TestVerifySignedPayload(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	payload := SuccessPayload{
		OrderID:   "order_123",
		PaymentID: "pay_456",
	}
	payload.Signature = SignPayload(secret, payload.OrderID, payload.PaymentID)

	if !VerifySignedPayload(secret, payload) {
		t.Fatal("expected a freshly signed payload to verify")
	}
}

func TestVerifySignedPayloadRejectsTampering(t *testing.T) {
	t.Parallel()

	secret := "test-secret"
	payload := SuccessPayload{
		OrderID:   "order_123",
		PaymentID: "pay_456",
	}
	payload.Signature = SignPayload(secret, payload.OrderID, payload.PaymentID)

	tampered := payload
	tampered.PaymentID = "pay_789"
	if VerifySignedPayload(secret, tampered) {
		t.Fatal("expected a payload with a swapped payment id to fail")
	}

	wrongSecret := payload
	if VerifySignedPayload("other-secret", wrongSecret) {
		t.Fatal("expected verification with the wrong secret to fail")
	}
}

func TestVerifySignedPayloadRejectsEmptyFields(t *testing.T) {
	t.Parallel()

	if VerifySignedPayload("secret", SuccessPayload{}) {
		t.Fatal("expected an empty payload to fail verification")
	}
	if VerifySignedPayload("secret", SuccessPayload{OrderID: "o", PaymentID: "p"}) {
		t.Fatal("expected a payload without a signature to fail verification")
	}
}

func TestClassifyFailure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		payload FailurePayload
		want    FailureReason
	}{
		{FailurePayload{Reason: "payment_cancelled"}, ReasonCancelled},
		{FailurePayload{Reason: "cancelled"}, ReasonCancelled},
		{FailurePayload{Reason: "card_network_unsupported"}, ReasonUnsupportedCard},
		{FailurePayload{Reason: "international_transaction_not_allowed"}, ReasonUnsupportedCard},
		{FailurePayload{Code: "BAD_REQUEST_ERROR"}, ReasonCancelled},
		{FailurePayload{Code: "SERVER_ERROR", Reason: "server_error"}, ReasonUnknown},
		{FailurePayload{}, ReasonUnknown},
	}

	for _, tc := range cases {
		if got := tc.payload.Classify(); got != tc.want {
			t.Fatalf("Classify(%+v) = %q, want %q", tc.payload, got, tc.want)
		}
	}
}
