package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayload computes the hex HMAC-SHA256 the gateway attaches to success
// callbacks: the signing input is "<orderID>|<paymentID>".
func SignPayload(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignedPayload checks a widget success payload against the key secret
// in constant time.
func VerifySignedPayload(secret string, payload SuccessPayload) bool {
	if payload.OrderID == "" || payload.PaymentID == "" || payload.Signature == "" {
		return false
	}
	expected := SignPayload(secret, payload.OrderID, payload.PaymentID)
	return hmac.Equal([]byte(expected), []byte(payload.Signature))
}
