package controllers

import (
	"net/http"

	"github.com/avilesdev/storefront-backend/api/middleware"
	"github.com/avilesdev/storefront-backend/api/responses"
	"github.com/avilesdev/storefront-backend/api/validators"
	"github.com/avilesdev/storefront-backend/internal/checkout"
	"github.com/avilesdev/storefront-backend/internal/payment"
	"github.com/avilesdev/storefront-backend/pkg/gateway"
	"github.com/avilesdev/storefront-backend/pkg/logger"
)

// CheckoutState returns the session's wizard position and form data.
func CheckoutState(wizard *checkout.Wizard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		state, err := wizard.State(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

// CheckoutAdvance validates the current step's fields and moves forward.
func CheckoutAdvance(wizard *checkout.Wizard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload checkout.AdvanceInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := wizard.Advance(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

// CheckoutBack steps the wizard backward, keeping entered fields.
func CheckoutBack(wizard *checkout.Wizard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		state, err := wizard.Back(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

// CheckoutInquiry submits the review step without capturing payment.
func CheckoutInquiry(orch *payment.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		record, err := orch.SubmitInquiry(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"purchaseId":     record.ID,
			"gatewayOrderId": record.GatewayOrderID,
		})
	}
}

// CheckoutOrder creates the gateway order and returns the widget parameters.
func CheckoutOrder(orch *payment.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		params, err := orch.BeginPayment(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, params)
	}
}

// CheckoutConfirm verifies the gateway's success payload and finalizes the
// purchase.
func CheckoutConfirm(orch *payment.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload gateway.SuccessPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := orch.ConfirmPayment(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"purchaseId":       record.ID,
			"gatewayOrderId":   record.GatewayOrderID,
			"gatewayPaymentId": record.GatewayPaymentID,
		})
	}
}

// CheckoutCancel handles the widget's failure callback and tells the client
// whether the wizard stays open for a retry.
func CheckoutCancel(orch *payment.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload gateway.FailurePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := orch.CancelPayment(r.Context(), sessionID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
