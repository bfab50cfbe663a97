package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-klin/internal/common"
	"github.com/noah-isme/backend-klin/internal/pricing"
	"github.com/noah-isme/backend-klin/internal/tax"
)

// Handler wires the cart aggregator to HTTP. The presentation layer never
// prices or merges items itself; it only calls these operations.
type Handler struct {
	Svc         *Service
	TaxResolver tax.Resolver
	TaxBps      int
	ShippingFee pricing.Money
	Currency    string
	Validate    *validator.Validate
	Logger      zerolog.Logger
}

// Create mints a new cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id := NewSessionID()
	cart := h.Svc.Get(r.Context(), id)
	common.JSONData(w, http.StatusCreated, map[string]any{"cartId": id, "cart": cart})
}

// Get returns cart contents and the derived summary.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()
	cart := h.Svc.Get(ctx, id)

	taxBps := h.TaxBps
	if h.TaxResolver != nil {
		address, postal := h.Svc.Location(ctx, id)
		if bps, err := h.TaxResolver.RateBps(ctx, address, postal); err == nil {
			taxBps = bps
		} else {
			h.Logger.Warn().Err(err).Str("session", id).Msg("tax_resolver_failed")
		}
	}
	summary := h.Svc.Summary(ctx, id, taxBps, h.ShippingFee)

	common.JSONData(w, http.StatusOK, map[string]any{
		"cart":     cart,
		"summary":  summary,
		"currency": h.Currency,
	})
}

type addItemPayload struct {
	ID               string                 `json:"id"`
	PriceID          string                 `json:"priceId"`
	Name             string                 `json:"name" validate:"max=200"`
	UnitPrice        pricing.Money          `json:"unitPrice" validate:"gte=0"`
	Qty              int                    `json:"qty" validate:"required,gte=1"`
	Recurrence       string                 `json:"recurrence"`
	ServiceType      string                 `json:"serviceType"`
	PaymentFrequency string                 `json:"paymentFrequency"`
	Address          string                 `json:"address"`
	PostalCode       string                 `json:"postalCode"`
	Notes            string                 `json:"notes"`
	Service          *pricing.ServiceConfig `json:"service"`
	Meta             map[string]any         `json:"meta"`
}

// AddItem adds or merges a line item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload addItemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
	}
	cart, err := h.Svc.Add(r.Context(), id, AddItemInput{
		ID:         strings.TrimSpace(payload.ID),
		Name:       payload.Name,
		UnitPrice:  payload.UnitPrice,
		Quantity:   payload.Qty,
		Recurrence: pricing.Recurrence(payload.Recurrence),
		Config: Config{
			PriceID:          strings.TrimSpace(payload.PriceID),
			ServiceType:      payload.ServiceType,
			PaymentFrequency: payload.PaymentFrequency,
			Address:          payload.Address,
			PostalCode:       payload.PostalCode,
			Notes:            payload.Notes,
			Service:          payload.Service,
			Meta:             payload.Meta,
		},
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"cart": cart})
}

// UpdateItem sets the quantity of a line item. Zero or less removes it.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	var payload struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		// non-integer and non-finite quantities land here
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "qty must be an integer", nil)
		return
	}
	cart, err := h.Svc.UpdateQuantity(r.Context(), id, itemID, payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"cart": cart})
}

// RemoveItem deletes a line item. Removing an absent item succeeds.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	cart, err := h.Svc.Remove(r.Context(), id, itemID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]any{"cart": cart})
}

// Clear empties the cart and drops the coupon.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cart := h.Svc.Clear(r.Context(), id)
	common.JSONData(w, http.StatusOK, map[string]any{"cart": cart})
}

// ApplyCoupon validates a coupon code and attaches it when accepted.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload struct {
		Code string `json:"code" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}
	payload.Code = strings.TrimSpace(payload.Code)
	result, err := h.Svc.ApplyCoupon(r.Context(), id, payload.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Accepted {
		status = http.StatusUnprocessableEntity
	}
	common.JSONData(w, status, result)
}

// RemoveCoupon detaches the applied coupon.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cart := h.Svc.RemoveCoupon(r.Context(), id)
	common.JSONData(w, http.StatusOK, map[string]any{"cart": cart})
}

// Quote prices a service configuration without touching any cart.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var cfg pricing.ServiceConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid payload", nil)
		return
	}
	result, err := h.Svc.Catalog.Quote(cfg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		common.JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, common.ErrValidation):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, pricing.ErrUnknownEntry):
		common.JSONError(w, http.StatusUnprocessableEntity, "UNPRICEABLE", "could not price this item", nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		h.Logger.Error().Err(err).Msg("cart_handler_error")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
