// Package httpapi is the thin presentation facade over the cart/checkout
// core. It resolves an identity, translates JSON to core calls and core
// errors to status codes, and nothing else.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jadegarden/storefront/internal/domain"
	"github.com/jadegarden/storefront/internal/port"
	"github.com/jadegarden/storefront/internal/pricing"
	"github.com/jadegarden/storefront/internal/service"
)

// UserHeader carries the caller identity. Real authentication is handled
// upstream; an empty header maps to ErrNotAuthenticated.
const UserHeader = "X-User-ID"

type Handler struct {
	menu     port.MenuRepository
	carts    port.CartRepository
	checkout *service.Checkout
	calc     pricing.Calculator
	logger   *slog.Logger

	mu     sync.Mutex
	stores map[string]*service.CartStore
}

func New(menu port.MenuRepository, carts port.CartRepository, checkout *service.Checkout, calc pricing.Calculator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		menu:     menu,
		carts:    carts,
		checkout: checkout,
		calc:     calc,
		logger:   logger,
		stores:   make(map[string]*service.CartStore),
	}
}

func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/categories", h.handleListCategories).Methods(http.MethodGet)
	r.HandleFunc("/menu", h.handleListMenu).Methods(http.MethodGet)
	r.HandleFunc("/menu/{id}", h.handleGetMenuItem).Methods(http.MethodGet)

	r.HandleFunc("/cart", h.handleGetCart).Methods(http.MethodGet)
	r.HandleFunc("/cart", h.handleClearCart).Methods(http.MethodDelete)
	r.HandleFunc("/cart/items", h.handleAddItem).Methods(http.MethodPost)
	r.HandleFunc("/cart/items/{id}", h.handleUpdateQuantity).Methods(http.MethodPut)
	r.HandleFunc("/cart/items/{id}", h.handleRemoveItem).Methods(http.MethodDelete)

	r.HandleFunc("/orders", h.handlePlaceOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.handleGetOrder).Methods(http.MethodGet)

	return r
}

// cartStore returns the caller's store, creating and loading it on first
// use. A failed load still yields a usable empty store.
func (h *Handler) cartStore(r *http.Request) (*service.CartStore, error) {
	ownerID := r.Header.Get(UserHeader)
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	h.mu.Lock()
	store, ok := h.stores[ownerID]
	h.mu.Unlock()
	if ok {
		return store, nil
	}

	store, err := service.NewCartStore(ownerID, h.carts, h.menu, h.calc, h.logger)
	if err != nil {
		return nil, err
	}
	if err := store.Load(r.Context()); err != nil {
		h.logger.Error("cart load failed", "owner_id", ownerID, "error", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.stores[ownerID]; ok {
		return existing, nil
	}
	h.stores[ownerID] = store
	return store, nil
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.menu.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, categoryViews(categories))
}

func (h *Handler) handleListMenu(w http.ResponseWriter, r *http.Request) {
	var filter domain.MenuFilter
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeMessage(w, http.StatusBadRequest, "invalid category id")
			return
		}
		filter.CategoryID = id
	}
	filter.AvailableOnly = r.URL.Query().Get("available") == "true"
	filter.FeaturedOnly = r.URL.Query().Get("featured") == "true"

	items, err := h.menu.ListItems(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, menuItemViews(items))
}

func (h *Handler) handleGetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid menu item id")
		return
	}

	item, err := h.menu.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, menuItemView(item))
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartStore(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartView(store, h.calc))
}

type addItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	// Quantity is a pointer so an omitted field defaults to 1 while an
	// explicit zero is rejected as invalid.
	Quantity            *int32 `json:"quantity"`
	SpecialInstructions string `json:"special_instructions"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartStore(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quantity := int32(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := store.AddItem(r.Context(), req.MenuItemID, quantity, req.SpecialInstructions)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, cartLineView(line, h.calc))
}

type updateQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartStore(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	lineID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid cart line id")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateQuantity(r.Context(), lineID, req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartView(store, h.calc))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartStore(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	lineID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid cart line id")
		return
	}

	if err := store.RemoveItem(r.Context(), lineID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartView(store, h.calc))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartStore(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cartView(store, h.calc))
}

type placeOrderRequest struct {
	DeliveryAddress     string `json:"delivery_address"`
	Phone               string `json:"phone"`
	SpecialInstructions string `json:"special_instructions"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	store, err := h.cartStore(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), store, req.DeliveryAddress, req.Phone, req.SpecialInstructions)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, orderView(order))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(UserHeader)

	orders, err := h.checkout.ListOrders(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orderViews(orders))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ownerID := r.Header.Get(UserHeader)

	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.checkout.GetOrder(r.Context(), ownerID, orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orderView(order))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var partial *domain.PartialOrderError
	if errors.As(err, &partial) {
		// Never collapse a partial order into a generic failure: the client
		// must learn which half succeeded.
		h.logger.Error("partial order failure",
			"order_id", partial.OrderID, "order_number", partial.OrderNumber, "error", partial.Err)
		h.writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":        "order created but its items could not be saved",
			"order_id":     partial.OrderID,
			"order_number": partial.OrderNumber,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		h.writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMissingDeliveryInfo),
		errors.Is(err, domain.ErrItemUnavailable):
		h.writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrMenuItemNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		h.writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNumberConflict):
		h.writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrCartLoading):
		h.writeMessage(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		h.writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
