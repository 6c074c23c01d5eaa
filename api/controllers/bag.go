package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avilesdev/storefront-backend/api/middleware"
	"github.com/avilesdev/storefront-backend/api/responses"
	"github.com/avilesdev/storefront-backend/api/validators"
	"github.com/avilesdev/storefront-backend/internal/bag"
	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
	"github.com/avilesdev/storefront-backend/pkg/logger"
)

// BagFetch returns the session's bag with totals.
func BagFetch(store *bag.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		summary, err := store.Summary(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBagResponse(summary))
	}
}

type addItemRequest struct {
	ID    uuid.UUID `json:"id" validate:"required"`
	Force bool      `json:"force"`
}

// BagAddItem adds one unit of a product to the bag. A limit rejection comes
// back as a 422 carrying the violated limit and its guidance text so the
// client can offer the force option.
func BagAddItem(store *bag.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := store.Add(r.Context(), sessionID, payload.ID, payload.Force)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if outcome.Exceeded() {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeCartLimit, outcome.Limit.Message()).
					WithDetails(map[string]any{"limit": outcome.Limit}))
			return
		}

		summary, err := store.Summary(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, addItemResponse{
			Status: outcome.Status,
			Item:   outcome.Item,
			Bag:    newBagResponse(summary),
		})
	}
}

// BagRemoveItem deletes one line from the bag. Removing an absent line
// succeeds.
func BagRemoveItem(store *bag.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		itemID := chi.URLParam(r, "itemId")

		if err := store.Remove(r.Context(), sessionID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := store.Summary(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBagResponse(summary))
	}
}

// BagClear empties the session's bag.
func BagClear(store *bag.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		if err := store.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newBagResponse(bag.Summary{}))
	}
}

type addItemResponse struct {
	Status bag.AddStatus `json:"status"`
	Item   *bag.Item     `json:"item,omitempty"`
	Bag    bagResponse   `json:"bag"`
}

type bagResponse struct {
	Items         []bag.Item      `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	DistinctItems int             `json:"distinctItems"`
	SubtotalCents int             `json:"subtotalCents"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

func newBagResponse(summary bag.Summary) bagResponse {
	items := summary.Items
	if items == nil {
		items = []bag.Item{}
	}
	return bagResponse{
		Items:         items,
		TotalQuantity: summary.TotalQuantity,
		DistinctItems: summary.DistinctItems,
		SubtotalCents: summary.SubtotalCents,
		Subtotal:      summary.Subtotal,
	}
}
