package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/platform/logger"
	"github.com/tiendalia/cart-service/internal/service"
)

const sessionHeader = "X-Session-ID"

type Handler struct {
	cartService  service.CartService
	orderService service.OrderService
	log          logger.Logger
}

func NewHandler(cartService service.CartService, orderService service.OrderService, log logger.Logger) *Handler {
	return &Handler{
		cartService:  cartService,
		orderService: orderService,
		log:          log,
	}
}

type addItemRequest struct {
	ProductID     int64                 `json:"productoId"`
	VariantID     *int64                `json:"varianteId"`
	Customization *entity.Customization `json:"personalizacion"`
}

type updateQuantityRequest struct {
	Quantity int `json:"cantidad"`
}

type checkoutRequest struct {
	Transport     string                 `json:"transporte"`
	PaymentMethod string                 `json:"metodoPago"`
	Email         string                 `json:"email"`
	Address       entity.ShippingAddress `json:"direccion"`
}

type availabilityResponse struct {
	ProductID int64 `json:"productoId"`
	Available int   `json:"disponible"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing " + sessionHeader + " header"})
		return "", false
	}
	return sessionID, true
}

func (h *Handler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	cart, err := h.cartService.GetCart(r.Context(), sessionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debugf("Invalid request body for AddItem: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ProductID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "productoId is required"})
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), sessionID, req.ProductID, req.VariantID, req.Customization)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	// The quantity stepper's lower bound lives here, not in the store.
	if req.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cantidad must be at least 1"})
		return
	}

	cart, err := h.cartService.UpdateQuantity(r.Context(), sessionID, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveItem(r.Context(), sessionID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *Handler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.cartService.ClearCart(r.Context(), sessionID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid product ID"})
		return
	}

	available, err := h.cartService.Availability(r.Context(), sessionID, productID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{ProductID: productID, Available: available})
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Transport == "" || req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "transporte and metodoPago are required"})
		return
	}

	order, err := h.orderService.PlaceOrder(r.Context(), service.PlaceOrderParams{
		SessionID:     sessionID,
		Transport:     req.Transport,
		PaymentMethod: req.PaymentMethod,
		Address:       req.Address,
		Email:         req.Email,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "id"), sessionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.orderService.ListOrders(r.Context(), sessionID, page, pageSize)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	order, err := h.orderService.CancelOrder(r.Context(), chi.URLParam(r, "id"), sessionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStockExceeded):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrVariantNotFound), errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrNotCancellable):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		h.log.Errorf("Unhandled service error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
