package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/core/cart"
	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/core/service"
)

type HTTPHandler struct {
	cartService *service.CartService
	logger      *zap.Logger
	onLoad      []func()
}

type UpdateQuantityRequest struct {
	Qty int `json:"qty"`
}

type SelectMethodRequest struct {
	Code string          `json:"code"`
	Cost decimal.Decimal `json:"cost"`
}

type CartResponse struct {
	cart.Snapshot
	Totals domain.Totals `json:"totals"`
}

type AddItemResponse struct {
	service.AddResult
	Cart CartResponse `json:"cart"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func NewHTTPHandler(cartService *service.CartService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{cartService: cartService, logger: logger}
}

// OnLoad registers fn to run after every successful POST /api/cart/load.
func (h *HTTPHandler) OnLoad(fn func()) {
	h.onLoad = append(h.onLoad, fn)
}

func (h *HTTPHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Get("/totals", h.GetTotals)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{sku}", h.UpdateQuantity)
		r.Delete("/items/{sku}", h.RemoveItem)
		r.Put("/shipping", h.ChangeShippingMethod)
		r.Put("/payment", h.ChangePaymentMethod)
		r.Post("/clear", h.Clear)
		r.Post("/load", h.Load)
	})
	return r
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *HTTPHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartService.Totals())
}

func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	result, err := h.cartService.AddItem(r.Context(), product)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			writeError(w, http.StatusBadRequest, "invalid_product", "sku is required")
			return
		}
		h.logger.Warn("add item failed", zap.String("sku", product.SKU), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "stock_check_failed", "stock availability could not be verified")
		return
	}

	writeJSON(w, http.StatusOK, AddItemResponse{AddResult: result, Cart: h.cartResponse()})
}

func (h *HTTPHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	if err := h.cartService.UpdateQuantity(chi.URLParam(r, "sku"), req.Qty); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item_not_found", "item not in cart")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cartService.RemoveItem(chi.URLParam(r, "sku"))
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *HTTPHandler) ChangeShippingMethod(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMethod(w, r)
	if !ok {
		return
	}
	h.cartService.ChangeShippingMethod(req.Code, req.Cost)
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *HTTPHandler) ChangePaymentMethod(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMethod(w, r)
	if !ok {
		return
	}
	h.cartService.ChangePaymentMethod(req.Code, req.Cost)
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *HTTPHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cartService.Clear()
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *HTTPHandler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.Load(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "load_failed", "cart could not be loaded")
		return
	}
	for _, fn := range h.onLoad {
		fn()
	}
	writeJSON(w, http.StatusOK, h.cartResponse())
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"loaded": h.cartService.State().Loaded,
	})
}

func (h *HTTPHandler) cartResponse() CartResponse {
	snap := h.cartService.State()
	return CartResponse{Snapshot: snap, Totals: snap.Totals()}
}

func decodeMethod(w http.ResponseWriter, r *http.Request) (SelectMethodRequest, bool) {
	var req SelectMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return req, false
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "invalid_method", "code is required")
		return req, false
	}
	if req.Cost.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_method", "cost must not be negative")
		return req, false
	}
	return req, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
